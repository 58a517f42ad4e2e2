package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Address{},
		&Dish{},
		&Order{},
		&Review{},
		&Gamification{},
	}
}
