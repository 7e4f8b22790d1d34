package model

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&ChemicalInventory{},
		&MaintenanceTask{},
		&TaskCompletion{},
		&Alert{},
		&ReadingType{},
		&Reading{},
		&AppMeta{},
	}
}
