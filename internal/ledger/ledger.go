package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Уровни подтверждения
const (
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// Address - адрес в сети (32 байта, hex)
type Address string

func ParseAddress(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	return Address(s), nil
}

func (a Address) String() string {
	return string(a)
}

// Checkpoint - свежая точка отсчета для авторизации транзакции.
// Протухает после ValidHeight
type Checkpoint struct {
	Blockhash   string
	ValidHeight uint64
}

type AccountInfo struct {
	Address Address
	Owner   Address
	Asset   Address
	Amount  uint64
}

// Инструкции транзакции

const (
	ProgramToken = "token"
)

type AccountMeta struct {
	Address  Address `json:"address"`
	Signer   bool    `json:"signer"`
	Writable bool    `json:"writable"`
}

type Instruction struct {
	Program  string        `json:"program"`
	Kind     string        `json:"kind"`
	Accounts []AccountMeta `json:"accounts"`
	Amount   uint64        `json:"amount,omitempty"`
}

// NewTransferInstruction - перевод amount (в минимальных единицах)
// между токен-счетами. Подписывает владелец счета-источника
func NewTransferInstruction(from Address, to Address, owner Address, amount uint64) Instruction {
	return Instruction{
		Program: ProgramToken,
		Kind:    "transfer",
		Accounts: []AccountMeta{
			{Address: from, Writable: true},
			{Address: to, Writable: true},
			{Address: owner, Signer: true},
		},
		Amount: amount,
	}
}

// NewCreateAssociatedAccountInstruction - создание токен-счета получателя.
// Оплачивает payer, владельцем становится owner
func NewCreateAssociatedAccountInstruction(payer Address, account Address, owner Address, asset Address) Instruction {
	return Instruction{
		Program: ProgramToken,
		Kind:    "createAssociatedAccount",
		Accounts: []AccountMeta{
			{Address: payer, Signer: true, Writable: true},
			{Address: account, Writable: true},
			{Address: owner},
			{Address: asset},
		},
	}
}

// Транзакция

type Transaction struct {
	Instructions []Instruction `json:"instructions"`
	FeePayer     Address       `json:"feePayer"`
	Blockhash    string        `json:"blockhash"`
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (tx *Transaction) Add(in Instruction) {
	tx.Instructions = append(tx.Instructions, in)
}

// Message - каноничные байты транзакции для подписи
func (tx *Transaction) Message() []byte {
	msg, _ := json.Marshal(tx)
	return msg
}

type SignedTransaction struct {
	Transaction
	Signature []byte `json:"signature"`
}

// Serialize - байты для отправки в сеть
func (tx *SignedTransaction) Serialize() []byte {
	raw, _ := json.Marshal(tx)
	return raw
}

// TxHash - идентификатор транзакции = hex от подписи
func (tx *SignedTransaction) TxHash() string {
	return hex.EncodeToString(tx.Signature)
}

type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          int
}

// Client - клиент сети реестра
type Client interface {
	GetLatestCheckpoint(ctx context.Context, commitment string) (Checkpoint, error)
	GetAccount(ctx context.Context, address Address) (AccountInfo, error)
	SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error)
	ConfirmTransaction(ctx context.Context, txHash string, checkpoint Checkpoint, commitment string) error
}

// DeriveAssociatedAccount - детерминированный адрес токен-счета
// для пары (актив, владелец)
func DeriveAssociatedAccount(asset Address, owner Address) Address {
	sum := sha256.Sum256([]byte("associated:" + asset.String() + ":" + owner.String()))
	return Address(hex.EncodeToString(sum[:]))
}

// ToBaseUnits - перевод суммы в минимальные единицы актива.
// Хвост за пределами decimals отбрасывается, не округляется
func ToBaseUnits(amount decimal.Decimal, decimals int32) uint64 {
	scaled := amount.Shift(decimals).Truncate(0)
	return uint64(scaled.IntPart())
}
