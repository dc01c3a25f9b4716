package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation возвращается при некорректных входных данных.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound возвращается, если связанная сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock возвращается, если остатка товара не хватает для заказа.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateReceipt возвращается, если у заказа уже есть действующий чек.
	ErrDuplicateReceipt = errors.New("order already has an active receipt")
	// ErrReceiptNumberConflict возвращается, если номер чека не удалось выделить после повторов.
	ErrReceiptNumberConflict = errors.New("receipt number conflict")
	// ErrInvalidState возвращается, если операция недопустима в текущем состоянии сущности.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition возвращается при недопустимой смене статуса.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrAlreadyAssigned возвращается, если у клиента уже есть активный продавец.
	ErrAlreadyAssigned = errors.New("client already assigned")
	// ErrAlreadyIssued возвращается при повторной выдаче чека.
	ErrAlreadyIssued = errors.New("receipt already issued")
	// ErrTransactionTimeout возвращается, если транзакция не уложилась в отведённое время.
	ErrTransactionTimeout = errors.New("transaction timeout")
	// ErrUserExists возвращается при регистрации пользователя с занятым email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked возвращается для заблокированной учётной записи.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountInactive возвращается для отключённой учётной записи.
	ErrAccountInactive = errors.New("account inactive")
	// ErrProductExists возвращается при создании товара с занятым кодом.
	ErrProductExists = errors.New("product code already exists")
)

// InsufficientStockError уточняет, какого товара и сколько не хватило.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidTransitionError описывает отклонённую смену статуса.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Validationf оборачивает ErrValidation сообщением с подробностями.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf оборачивает ErrNotFound сообщением с подробностями.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsRetryable сообщает, может ли повтор запроса завершиться успешно.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionTimeout)
}
