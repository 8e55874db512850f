package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	testCases := []struct {
		singular string
		want     string
	}{
		{singular: "robot", want: "robots"},
		{singular: "penny", want: "pennies"},
		{singular: "mess", want: "messes"},
		{singular: "life", want: "lives"},
		{singular: "leaf", want: "leaves"},
		{singular: "profile", want: "profiles"},
		{singular: "effect", want: "effects"},
		{singular: "person", want: "people"},
		{singular: "child", want: "children"},
		{singular: "goose", want: "geese"},
		{singular: "woman", want: "women"},
		{singular: "day", want: "days"},
		{singular: "quiz", want: "quizzes"},
		{singular: "mouse", want: "mice"},
		{singular: "matrix", want: "matrices"},
		{singular: "index", want: "indices"},
		{singular: "octopus", want: "octopi"},
		{singular: "box", want: "boxes"},
		{singular: "church", want: "churches"},
		{singular: "sheep", want: "sheep"},
		{singular: "information", want: "information"},
		// 不规则的单词只匹配整个单词
		{singular: "salesperson", want: "salespersons"},
		{singular: "Person", want: "Persons"},
		{singular: "", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.singular, func(t *testing.T) {
			assert.Equal(t, tc.want, Pluralize(tc.singular))
		})
	}
}

func TestPluralized_TableResolver(t *testing.T) {
	people := func(name string) string {
		if name == "Person" {
			return "People"
		}
		return Pluralize(name)
	}
	type Person struct {
		Id int
	}
	m := Auto[Person](WithTableResolver(people))
	assert.Equal(t, "People", m.TableName())

	m.Table("robot")
	assert.Equal(t, "robots", m.TableName())
}

func TestUnderscore(t *testing.T) {
	assert.Equal(t, "first_name", Underscore("FirstName"))
	assert.Equal(t, "id", Underscore("Id"))
}
