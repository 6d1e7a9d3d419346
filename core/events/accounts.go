package events

import "math/big"

const (
	TypeAccountRegistered = "account.registered"
	TypeRoleUpdated       = "account.role_updated"
	TypeTicketDefined     = "ticket.defined"
)

type AccountRegistered struct {
	Account         string
	TicketType      string
	Status          string
	StartingBalance *big.Int
}

func (AccountRegistered) EventType() string { return TypeAccountRegistered }

func (e AccountRegistered) Record() Record {
	return Record{
		Type: TypeAccountRegistered,
		Attributes: map[string]string{
			"account":         e.Account,
			"ticketType":      e.TicketType,
			"status":          e.Status,
			"startingBalance": formatAmount(e.StartingBalance),
		},
	}
}

type RoleUpdated struct {
	Caller  string
	Account string
	From    string
	To      string
}

func (RoleUpdated) EventType() string { return TypeRoleUpdated }

func (e RoleUpdated) Record() Record {
	return Record{
		Type: TypeRoleUpdated,
		Attributes: map[string]string{
			"caller":  e.Caller,
			"account": e.Account,
			"from":    e.From,
			"to":      e.To,
		},
	}
}

type TicketDefined struct {
	TicketType string
	Status     string
}

func (TicketDefined) EventType() string { return TypeTicketDefined }

func (e TicketDefined) Record() Record {
	return Record{
		Type: TypeTicketDefined,
		Attributes: map[string]string{
			"ticketType": e.TicketType,
			"status":     e.Status,
		},
	}
}
