package model

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderRegistered OrderStatus = "registrado"
	OrderConfirmed  OrderStatus = "confirmado"
	OrderDelivered  OrderStatus = "entregado"
	OrderVoided     OrderStatus = "anulado"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderRegistered: {OrderConfirmed, OrderVoided},
	OrderConfirmed:  {OrderDelivered, OrderVoided},
}

// Valid сообщает, является ли статус известным.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderRegistered, OrderConfirmed, OrderDelivered, OrderVoided:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода заказа в статус next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ReceiptStatus описывает статус чека.
type ReceiptStatus string

const (
	ReceiptRegistered ReceiptStatus = "registrada"
	ReceiptIssued     ReceiptStatus = "emitida"
	ReceiptVoided     ReceiptStatus = "anulada"
)

// Valid сообщает, является ли статус известным.
func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptRegistered, ReceiptIssued, ReceiptVoided:
		return true
	}
	return false
}

// AssignmentStatus описывает состояние закрепления клиента.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "activo"
	AssignmentInactive AssignmentStatus = "inactivo"
)
