package domain

// FieldType is the JSON type a resource field accepts.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "bool"
)

// ListScope decides which records a non-admin sees when listing a kind.
type ListScope string

const (
	// ScopeAll lists every record and allows any authenticated read.
	ScopeAll ListScope = "all"
	// ScopeOwner lists only the caller's records; single reads go through
	// the ownership check as well.
	ScopeOwner ListScope = "owner"
)

// FieldSpec describes one domain field of a resource kind.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	// Rules is a go-playground/validator tag applied to the decoded value.
	Rules   string
	Default any
}

// ResourceKind parameterizes the owned-resource CRUD component.
type ResourceKind struct {
	Name      string
	Fields    []FieldSpec
	ListScope ListScope
}

// Field returns the spec for name.
func (k ResourceKind) Field(name string) (FieldSpec, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

var (
	KindTasks = ResourceKind{
		Name: "tasks",
		Fields: []FieldSpec{
			{Name: "title", Type: FieldString, Required: true, Rules: "min=1,max=200"},
			{Name: "description", Type: FieldString, Required: true, Rules: "max=2000"},
			{Name: "completed", Type: FieldBool, Default: false},
		},
		ListScope: ScopeOwner,
	}

	KindMovies = ResourceKind{
		Name: "movies",
		Fields: []FieldSpec{
			{Name: "title", Type: FieldString, Required: true, Rules: "min=1,max=200"},
			{Name: "director", Type: FieldString, Rules: "max=200"},
			{Name: "year", Type: FieldNumber, Rules: "gte=1888,lte=2100"},
			{Name: "rating", Type: FieldNumber, Rules: "gte=0,lte=10"},
		},
		ListScope: ScopeAll,
	}

	KindProducts = ResourceKind{
		Name: "products",
		Fields: []FieldSpec{
			{Name: "name", Type: FieldString, Required: true, Rules: "min=1,max=200"},
			{Name: "price", Type: FieldNumber, Required: true, Rules: "gte=0"},
			{Name: "category", Type: FieldString, Rules: "oneof=Cascos Guantes Chaquetas Botas Accesorios Motos"},
			{Name: "description", Type: FieldString, Rules: "max=2000"},
			{Name: "size", Type: FieldString, Rules: "max=20"},
			{Name: "color", Type: FieldString, Rules: "max=50"},
			{Name: "stock", Type: FieldNumber, Rules: "gte=0", Default: float64(0)},
		},
		ListScope: ScopeAll,
	}
)

// BuiltinKinds returns the resource kinds served by the API.
func BuiltinKinds() []ResourceKind {
	return []ResourceKind{KindTasks, KindMovies, KindProducts}
}
