package validators

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldMessages maps json field name -> validation tag -> user facing message.
var fieldMessages = map[string]map[string]string{
	"username": {
		"required": "Username is required",
		"alphanum": "Username must be alphanumeric only",
	},
	"email": {
		"required": "Email is required",
		"email":    "Email must be a valid format (e.g., user@example.com)",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 8 characters long",
		"max":      "Password cannot exceed 72 characters",
		"password": "Password must include at least one uppercase letter, one lowercase letter, one number, and one special character (!@#$%^&*)",
	},
	"name": {
		"required": "Name is required",
		"min":      "Name must be at least 3 characters long",
		"max":      "Name cannot exceed 100 characters",
	},
	"description": {
		"required": "Description is required",
		"min":      "Description must be at least 10 characters long",
	},
	"price": {
		"required": "Price must be a positive number greater than 0",
		"gt":       "Price must be a positive number greater than 0",
		"type":     "Price must be a positive number greater than 0",
		"lt":       "Price cannot exceed 99999999.99",
		"cents":    "Price must have at most 2 decimal places",
	},
	"stock": {
		"required": "Stock is required",
		"min":      "Stock must be a non-negative integer",
		"type":     "Stock must be a non-negative integer",
		"max":      "Stock cannot exceed 2147483647",
	},
	"category": {
		"max": "Category cannot exceed 100 characters",
	},
	"items": {
		"required": "Order must include at least one item",
		"min":      "Order must include at least one item",
		"type":     "Items must be an array",
	},
	"productId": {
		"required": "Product ID is required",
		"type":     "Product ID must be a string",
	},
	"quantity": {
		"required": "Quantity must be at least 1",
		"min":      "Quantity must be at least 1",
		"max":      "Quantity cannot exceed 2147483647",
		"type":     "Quantity must be an integer",
	},
}

func lookupMessage(field, tag string) (string, bool) {
	if byTag, ok := fieldMessages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg, true
		}
	}
	return "", false
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := lookupMessage(fe.Field(), fe.Tag()); ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
