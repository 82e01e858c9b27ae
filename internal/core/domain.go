package core

import (
	"strings"
	"time"
)

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

const (
	MaxCategoryNameLength = 100
	MaxNoteLength         = 1000
)

type (
	CategoryType string

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		FirstName    string    `json:"first_name"`
		LastName     string    `json:"last_name"`
		CreatedAt    time.Time `json:"-"`
	}

	Category struct {
		ID        int64        `json:"id"`
		UserID    int64        `json:"-"`
		Name      string       `json:"name"`
		Type      CategoryType `json:"type"`
		CreatedAt time.Time    `json:"created_at"`
		UpdatedAt time.Time    `json:"updated_at"`
	}

	// Transaction is a dated income or expense. CategoryName and CategoryType
	// are read-model fields filled by the store from the owning category.
	Transaction struct {
		ID           int64        `json:"id"`
		UserID       int64        `json:"-"`
		CategoryID   int64        `json:"category"`
		CategoryName string       `json:"category_name"`
		CategoryType CategoryType `json:"category_type"`
		Amount       Money        `json:"amount"`
		Date         Date         `json:"date"`
		Note         *string      `json:"note"`
		CreatedAt    time.Time    `json:"created_at"`
		UpdatedAt    time.Time    `json:"updated_at"`
	}

	Budget struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"-"`
		Year      int       `json:"year"`
		Month     int       `json:"month"`
		Amount    Money     `json:"amount"`
		CreatedAt time.Time `json:"created_at"`
	}
)

func (t CategoryType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Validate() error {
	var errs ValidationErrors
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs = append(errs, NewValidationError("name", KindMissingField, "This field may not be blank."))
	case len([]rune(c.Name)) > MaxCategoryNameLength:
		errs = append(errs, NewValidationError("name", KindInvalidValue, "Ensure this field has no more than 100 characters."))
	}
	if !c.Type.Valid() {
		errs = append(errs, NewValidationError("type", KindInvalidValue, "\""+string(c.Type)+"\" is not a valid choice."))
	}
	return errs.Err()
}

// Validate checks the transaction on its own. Category ownership needs the
// category and is checked by the service.
func (t Transaction) Validate() error {
	var errs ValidationErrors
	if !t.Amount.IsPositive() {
		errs = append(errs, NewValidationError("amount", KindNonPositiveAmount, "Amount must be positive."))
	}
	if t.Date.IsZero() {
		errs = append(errs, NewValidationError("date", KindMissingField, "This field is required."))
	}
	if t.Note != nil && len([]rune(*t.Note)) > MaxNoteLength {
		errs = append(errs, NewValidationError("note", KindInvalidValue, "Ensure this field has no more than 1000 characters."))
	}
	return errs.Err()
}

func (b Budget) Validate() error {
	var errs ValidationErrors
	if b.Month < 1 || b.Month > 12 {
		errs = append(errs, NewValidationError("month", KindInvalidMonth, "Month must be between 1 and 12."))
	}
	if b.Year < 1 || b.Year > 9999 {
		errs = append(errs, NewValidationError("year", KindInvalidValue, "Year must be between 1 and 9999."))
	}
	if b.Amount.IsNegative() {
		errs = append(errs, NewValidationError("amount", KindNegativeAmount, "Budget amount cannot be negative."))
	}
	return errs.Err()
}

// Period returns the calendar month the budget applies to.
func (b Budget) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}
