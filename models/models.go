package models

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Client{},
		&Status{},
		&Bank{},
		&Practice{},
		&Document{},
		&ActivityLog{},
		&Session{},
	}
}
