package validation

import (
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
)

// UserSchema is used for both creating and editing users.
// Email is only checked for presence and role is not checked against identity.Roles.
func UserSchema() *Schema[identity.UserInput] {
	return NewSchema[identity.UserInput](
		Field{Name: "name", Kind: KindString, Default: "", Message: "Enter name please"},
		Field{Name: "email", Kind: KindString, Default: "", Message: "Enter email please"},
		Field{Name: "role", Kind: KindString, Default: "", Message: "Select role"},
	)
}

// ProductSchema is used for both creating and editing products
func ProductSchema() *Schema[catalog.ProductInput] {
	return NewSchema[catalog.ProductInput](
		Field{Name: "name", Kind: KindString, Default: "", Message: "Name is required"},
		Field{Name: "price", Kind: KindNumber, Default: float64(0), Message: "Price must be greater than 0"},
		Field{Name: "inStock", Kind: KindBool, Default: false},
	)
}
