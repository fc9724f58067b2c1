package models

// RegisterModels lists every entity handed to AutoMigrate.
func RegisterModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&Notification{},
	}
}
