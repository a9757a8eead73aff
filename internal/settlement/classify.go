package settlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iurnickita/grabmarket/internal/ledger"
)

// Классификация ошибок отправки/подтверждения. Чистые функции без I/O:
// retry-цикл исполнителя опирается только на их вердикт

type verdictKind int

const (
	verdictRetry verdictKind = iota
	verdictSuccess
	verdictFatal
)

type verdict struct {
	kind  verdictKind
	cause error
}

// Подстроки из ответов узла сети
const (
	msgAlreadyProcessed  = "already been processed"
	msgBlockhashNotFound = "blockhash not found"
	msgInsufficientFunds = "insufficient funds"
	msgUserRejected      = "user rejected"
)

func errContains(err error, substr string) bool {
	return strings.Contains(strings.ToLower(err.Error()), substr)
}

// classifySubmit - ошибка на этапе отправки.
// "already processed" здесь означает гонку с предыдущей попыткой,
// повторяем со свежим checkpoint
func classifySubmit(err error) verdict {
	if errContains(err, msgAlreadyProcessed) || errContains(err, msgBlockhashNotFound) {
		return verdict{kind: verdictRetry, cause: ErrStaleCheckpoint}
	}
	return verdict{kind: verdictFatal, cause: fatalCause(err)}
}

// classifyConfirm - ошибка на этапе подтверждения.
// "already processed" здесь - успех: сеть транзакцию уже приняла
func classifyConfirm(err error) verdict {
	if errContains(err, msgAlreadyProcessed) {
		return verdict{kind: verdictSuccess}
	}
	if errContains(err, msgBlockhashNotFound) {
		return verdict{kind: verdictRetry, cause: ErrStaleCheckpoint}
	}
	return verdict{kind: verdictFatal, cause: fatalCause(err)}
}

func fatalCause(err error) error {
	switch {
	case errContains(err, msgInsufficientFunds):
		return ErrInsufficientFunds
	case errContains(err, msgUserRejected):
		return ErrUserRejected
	case errors.Is(err, ledger.ErrConfirmationTimeout):
		return ErrConfirmationTimeout
	default:
		return fmt.Errorf("%w: %s", ErrUnknown, err.Error())
	}
}
