package errs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgumentError(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		wantParam string
		wantMsg   string
	}{
		{
			name:      "nil argument",
			err:       NewErrArgumentNil("parameters"),
			wantParam: "parameters",
			wantMsg:   `orm: parameters cannot be null (parameter "parameters")`,
		},
		{
			name:      "no columns",
			err:       NewErrNoColumnsMapped(),
			wantParam: "classMap",
			wantMsg:   `orm: No columns were mapped. (parameter "classMap")`,
		},
		{
			name:      "empty sort",
			err:       NewErrEmptySort(),
			wantParam: "sort",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, ErrArgument)
			assert.NotErrorIs(t, tc.err, ErrMapping)
			var ae *ArgumentError
			assert.True(t, errors.As(tc.err, &ae))
			assert.Equal(t, tc.wantParam, ae.Param)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, tc.err.Error())
			}
		})
	}
}

func TestMappingError(t *testing.T) {
	type Person struct{}
	err := NewErrMapNotFound(reflect.TypeOf(Person{}))
	assert.ErrorIs(t, err, ErrMapping)
	assert.NotErrorIs(t, err, ErrArgument)
	assert.ErrorIs(t, &MappingError{Msg: ErrMultipleTriggerIdentity.Msg}, ErrMultipleTriggerIdentity)
}
