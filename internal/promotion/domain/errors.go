package domain

import "errors"

var (
	ErrNotFound             = errors.New("promotion not found")
	ErrCodeExists           = errors.New("promotion code already exists")
	ErrInvalidID            = errors.New("invalid promotion id")
	ErrInvalidCode          = errors.New("invalid promotion code")
	ErrInvalidDiscountType  = errors.New("invalid discount type")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidDateRange     = errors.New("end date cannot be before the start date")
	ErrInvalidDate          = errors.New("invalid date format")
	ErrMultipleTargets      = errors.New("a promotion can only target one of product, category or brand")
	ErrTargetImmutable      = errors.New("promotion target cannot be changed after creation")
)
