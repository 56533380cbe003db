package reflectx

import (
	"reflect"
)

// ReturnsError checks if the last result of the function type ft is of type error.
func ReturnsError(ft reflect.Type) bool {
	numOut := ft.NumOut()
	if numOut == 0 {
		return false
	}

	return ft.Out(numOut-1) == ErrorType
}

// In returns the parameter types of the function type ft, skipping the first skip
// parameters (a method expression carries its receiver as parameter 0).
func In(ft reflect.Type, skip int) []reflect.Type {
	if ft.NumIn() <= skip {
		return nil
	}

	params := make([]reflect.Type, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}

	return params
}

// Out returns the result types of the function type ft without a trailing error.
func Out(ft reflect.Type) []reflect.Type {
	n := ft.NumOut()
	if ReturnsError(ft) {
		n--
	}

	results := make([]reflect.Type, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, ft.Out(i))
	}

	return results
}

// SameTypes reports whether two parameter lists are identical.
func SameTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
