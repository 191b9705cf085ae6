package employee

import "errors"

// Employee domain errors
var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrNoManagerAssigned = errors.New("no manager assigned to this employee")
)
