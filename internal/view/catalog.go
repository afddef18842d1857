package view

// Departments lists the departments notes are filed under, in display order.
var Departments = []string{
	"Computer Science",
	"Information Technology",
	"Electronics",
	"Mechanical",
	"Civil",
	"Electrical",
}

const (
	MinSemester = 1
	MaxSemester = 8
)

func ValidDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}

func ValidSemester(n int) bool {
	return n >= MinSemester && n <= MaxSemester
}
