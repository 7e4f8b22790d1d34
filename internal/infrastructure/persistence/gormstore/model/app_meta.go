package model

// AppMeta stores operational key/value state such as the last scheduler tick.
type AppMeta struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (AppMeta) TableName() string {
	return "app_meta"
}
