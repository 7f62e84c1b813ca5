package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	amountRegex   = `^\d+(\.\d{1,2})?$`
	currencyRegex = `^[A-Za-z]{3}$`
)

const (
	AmountTag   = "amount"
	CurrencyTag = "currency"
)

var (
	amountPattern   = regexp.MustCompile(amountRegex)
	currencyPattern = regexp.MustCompile(currencyRegex)
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	AmountTag:   ValidateAmount,
	CurrencyTag: ValidateCurrency,
}

// ValidateAmount accepts a positive amount with at most two decimal places.
func ValidateAmount(fl validator.FieldLevel) bool {
	amount := strings.TrimSpace(fl.Field().String())
	if !amountPattern.MatchString(amount) {
		return false
	}

	d, err := decimal.NewFromString(amount)
	return err == nil && d.IsPositive()
}

// ValidateCurrency accepts a three letter ISO 4217 code in any case.
func ValidateCurrency(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
