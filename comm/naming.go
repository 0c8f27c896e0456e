package comm

import "strings"

// Named is a type that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NameMustBeValid panics if the name does not follow the naming convention.
// There are several rules that a name must follow.
//  1. It must be organized in a hierarchical structure. For example, a name
//     "A.B.C" is valid, but "A.B.C." is not.
//  2. Individual names must not be empty. For example, "A..B" is not valid.
//  3. Individual names must be named in capitalized CamelCase style.
//     For example, "A.b" is not valid.
func NameMustBeValid(name string) {
	tokens := strings.Split(name, ".")
	for _, token := range tokens {
		tokenMustBeValid(name, token)
	}
}

func tokenMustBeValid(name, token string) {
	if token == "" {
		panic("Name " + name + " is not valid: element must not be empty")
	}

	invalidChars := []string{
		"_", "\"", "'", "-", "[", "]",
	}

	for _, c := range invalidChars {
		if strings.Contains(token, c) {
			panic("Name " + name + " is not valid: " +
				"element must not contain " + c)
		}
	}

	if token[0] < 'A' || token[0] > 'Z' {
		panic("Name " + name + " is not valid: " +
			"element must start with a capital letter")
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}
