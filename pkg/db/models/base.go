package models

import "github.com/google/uuid"

// assignID gives a fresh UUID to rows created without one. Postgres also has
// column defaults, sqlite does not.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for sqlite AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&ThicknessTier{},
		&Customer{},
		&CustomerPayment{},
		&Basket{},
		&BasketItem{},
		&Order{},
		&OrderItem{},
		&OrderService{},
	}
}
