package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/sqlmapper/orm/dialect"
	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

type Person struct {
	Id        int64
	FirstName string
	LastName  string `orm:"column=last_name"`
	Age       int
}

type Car struct {
	Id      int
	OwnerId int64
	Name    string
}

// rawPredicate 原样输出 SQL 片段
type rawPredicate string

func (r rawPredicate) SQL(Generator, *Parameters) (string, error) {
	return string(r), nil
}

func newGenerator(t *testing.T, opts ...ConfigOption) Generator {
	cfg, err := NewConfiguration(opts...)
	require.NoError(t, err)
	return NewGenerator(cfg)
}

func TestPredicate_SQL(t *testing.T) {
	testCases := []struct {
		name       string
		p          Predicate
		want       string
		wantParams []string
		wantErr    error
	}{
		{
			name:       "eq",
			p:          Field[Person]("FirstName", Eq, "Tom"),
			want:       "([Person].[FirstName] = @FirstName_0)",
			wantParams: []string{"@FirstName_0"},
		},
		{
			name:       "column alias",
			p:          Field[Person]("LastName", Like, "J%"),
			want:       "([Person].[last_name] LIKE @LastName_0)",
			wantParams: []string{"@LastName_0"},
		},
		{
			// 取反的时候翻转运算符
			name:       "not gt",
			p:          Field[Person]("Age", Gt, 18).Negate(),
			want:       "([Person].[Age] <= @Age_0)",
			wantParams: []string{"@Age_0"},
		},
		{
			name:       "not like",
			p:          Field[Person]("FirstName", Like, "T%").Negate(),
			want:       "([Person].[FirstName] NOT LIKE @FirstName_0)",
			wantParams: []string{"@FirstName_0"},
		},
		{
			name:       "not eq",
			p:          Field[Person]("Age", Eq, 18).Negate(),
			want:       "([Person].[Age] <> @Age_0)",
			wantParams: []string{"@Age_0"},
		},
		{
			name:       "is null",
			p:          Field[Person]("LastName", Eq, nil),
			want:       "([Person].[last_name] IS NULL)",
			wantParams: []string{},
		},
		{
			name:       "typed nil",
			p:          Field[Person]("LastName", Eq, (*string)(nil)).Negate(),
			want:       "([Person].[last_name] IS NOT NULL)",
			wantParams: []string{},
		},
		{
			name:       "in",
			p:          Field[Person]("Age", Eq, []int{18, 20}),
			want:       "([Person].[Age] IN (@Age_0, @Age_1))",
			wantParams: []string{"@Age_0", "@Age_1"},
		},
		{
			name:       "not in",
			p:          Field[Person]("Age", Eq, [2]int{18, 20}).Negate(),
			want:       "([Person].[Age] NOT IN (@Age_0, @Age_1))",
			wantParams: []string{"@Age_0", "@Age_1"},
		},
		{
			name:       "empty in",
			p:          Field[Person]("Age", Eq, []int{}),
			want:       "(1=0)",
			wantParams: []string{},
		},
		{
			name:       "empty not in",
			p:          Field[Person]("Age", Eq, []int{}).Negate(),
			want:       "(1=1)",
			wantParams: []string{},
		},
		{
			name:       "bytes are scalar",
			p:          Field[Person]("FirstName", Eq, []byte("Tom")),
			want:       "([Person].[FirstName] = @FirstName_0)",
			wantParams: []string{"@FirstName_0"},
		},
		{
			name:    "enumerable operator",
			p:       Field[Person]("Age", Gt, []int{18}),
			wantErr: errs.NewErrEnumerableOperator(),
		},
		{
			name:    "unknown property",
			p:       Field[Person]("Missing", Eq, 1),
			wantErr: errs.NewErrPropertyNotFound("Missing", typeOf[Person]()),
		},
		{
			name:       "between",
			p:          Between[Person]("Age", 18, 35),
			want:       "([Person].[Age] BETWEEN @Age_0 AND @Age_1)",
			wantParams: []string{"@Age_0", "@Age_1"},
		},
		{
			name:       "not between",
			p:          Between[Person]("Age", 18, 35).Negate(),
			want:       "([Person].[Age] NOT BETWEEN @Age_0 AND @Age_1)",
			wantParams: []string{"@Age_0", "@Age_1"},
		},
		{
			name:       "property",
			p:          Property[Car, Person]("OwnerId", Eq, "Id"),
			want:       "([Car].[OwnerId] = [Person].[Id])",
			wantParams: []string{},
		},
		{
			name:       "not property",
			p:          Property[Person, Person]("Age", Lt, "Id").Negate(),
			want:       "([Person].[Age] >= [Person].[Id])",
			wantParams: []string{},
		},
		{
			name:    "property unknown right",
			p:       Property[Car, Person]("OwnerId", Eq, "Missing"),
			wantErr: errs.NewErrPropertyNotFound("Missing", typeOf[Person]()),
		},
		{
			name:       "and group",
			p:          AndGroup(Field[Person]("FirstName", Eq, "Tom"), Field[Person]("Age", Ge, 18)),
			want:       "(([Person].[FirstName] = @FirstName_0) AND ([Person].[Age] >= @Age_1))",
			wantParams: []string{"@FirstName_0", "@Age_1"},
		},
		{
			name: "nested group",
			p: OrGroup(
				Field[Person]("Age", Lt, 18),
				AndGroup(Field[Person]("Age", Gt, 60), Field[Person]("FirstName", Eq, "Tom")),
			),
			want:       "(([Person].[Age] < @Age_0) OR (([Person].[Age] > @Age_1) AND ([Person].[FirstName] = @FirstName_2)))",
			wantParams: []string{"@Age_0", "@Age_1", "@FirstName_2"},
		},
		{
			name:       "empty group",
			p:          AndGroup(),
			want:       "(1=1)",
			wantParams: []string{},
		},
		{
			name:       "group skips nil",
			p:          OrGroup(nil, Field[Person]("Age", Eq, 1)),
			want:       "(([Person].[Age] = @Age_0))",
			wantParams: []string{"@Age_0"},
		},
		{
			name:       "group of empty children",
			p:          AndGroup(rawPredicate(""), rawPredicate("")),
			want:       "(1=1)",
			wantParams: []string{},
		},
		{
			name:       "group skips empty child",
			p:          OrGroup(rawPredicate(""), Field[Person]("Age", Eq, 1), rawPredicate("")),
			want:       "(([Person].[Age] = @Age_0))",
			wantParams: []string{"@Age_0"},
		},
		{
			name:       "group skips typed nil",
			p:          AndGroup((*FieldPredicate)(nil), Field[Person]("Age", Eq, 1), (*PredicateGroup)(nil)),
			want:       "(([Person].[Age] = @Age_0))",
			wantParams: []string{"@Age_0"},
		},
		{
			name:       "exists",
			p:          Exists[Car](Property[Car, Person]("OwnerId", Eq, "Id")),
			want:       "(EXISTS (SELECT 1 FROM [Car] WHERE ([Car].[OwnerId] = [Person].[Id])))",
			wantParams: []string{},
		},
		{
			name:       "not exists",
			p:          Exists[Car](Field[Car]("Name", Eq, "Volvo")).Negate(),
			want:       "(NOT EXISTS (SELECT 1 FROM [Car] WHERE ([Car].[Name] = @Name_0)))",
			wantParams: []string{"@Name_0"},
		},
		{
			name:    "exists without predicate",
			p:       Exists[Car](nil),
			wantErr: errs.NewErrArgumentNil("predicate"),
		},
		{
			name:    "exists with typed nil",
			p:       Exists[Car]((*FieldPredicate)(nil)),
			wantErr: errs.NewErrArgumentNil("predicate"),
		},
	}
	g := newGenerator(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewParameters()
			res, err := tc.p.SQL(g, params)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.want, res)
			assert.Equal(t, tc.wantParams, params.Names())
		})
	}
}

func TestPredicate_Values(t *testing.T) {
	g := newGenerator(t)
	params := NewParameters()
	_, err := AndGroup(
		Field[Person]("Age", Eq, []int{18, 20}),
		Between[Person]("Age", 1, 9),
	).SQL(g, params)
	require.NoError(t, err)
	for name, want := range map[string]any{"@Age_0": 18, "@Age_1": 20, "@Age_2": 1, "@Age_3": 9} {
		v, ok := params.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}
}

func TestPredicate_NilParameters(t *testing.T) {
	g := newGenerator(t)
	_, err := Field[Person]("Age", Eq, 1).SQL(g, nil)
	assert.Equal(t, errs.NewErrArgumentNil("parameters"), err)
	_, err = Between[Person]("Age", 1, 2).SQL(g, nil)
	assert.Equal(t, errs.NewErrArgumentNil("parameters"), err)
}

func TestPredicate_ZeroParameters(t *testing.T) {
	g := newGenerator(t)
	var params Parameters
	res, err := AndGroup(Field[Person]("Age", Eq, 1), Between[Person]("Age", 2, 3)).SQL(g, &params)
	require.NoError(t, err)
	assert.Equal(t, "(([Person].[Age] = @Age_0) AND ([Person].[Age] BETWEEN @Age_1 AND @Age_2))", res)
	assert.Equal(t, []string{"@Age_0", "@Age_1", "@Age_2"}, params.Names())
}

func TestPredicate_Dialects(t *testing.T) {
	testCases := []struct {
		name string
		d    dialect.Dialect
		want string
	}{
		{name: "mysql", d: dialect.MySQL, want: "(`Person`.`last_name` = @LastName_0)"},
		{name: "postgres", d: dialect.PostgreSQL, want: `("last_name" = @LastName_0)`},
		{name: "sqlite", d: dialect.SQLite, want: `("last_name" = @LastName_0)`},
		{name: "oracle", d: dialect.Oracle, want: "(PERSON.LAST_NAME = :LastName_0)"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t, WithDialect(tc.d))
			res, err := Field[Person]("LastName", Eq, "Jerry").SQL(g, NewParameters())
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)
		})
	}
}

func TestOperator_String(t *testing.T) {
	assert.Equal(t, ">=", Ge.String())
	assert.Equal(t, "LIKE", Like.String())
	assert.Equal(t, "OR", Or.String())
	assert.Equal(t, "AND", And.String())
}
