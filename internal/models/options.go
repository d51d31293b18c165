package models

// Option vocabularies back the admin form controls. Each row is a single
// selectable value.

type SizeOption struct {
	BaseModel
	Name string `json:"name"`
}

type StoreOption struct {
	BaseModel
	Name string `json:"name"`
}

type ClassificationOption struct {
	BaseModel
	Name string `json:"name"`
}

type GenderOption struct {
	BaseModel
	Name string `json:"name"`
}
