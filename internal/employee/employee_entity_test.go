package employee_test

import (
	"testing"

	"go-workforce/internal/employee"
	"go-workforce/internal/shared/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeIndexes(t *testing.T) {
	idx := dbtest.Indexes(t, &employee.Employee{})

	email, ok := idx["uq_employee_email"]
	require.True(t, ok)
	assert.Equal(t, "UNIQUE", email.Class)
	assert.Equal(t, []string{"company_id", "email"}, dbtest.Columns(email))
}
