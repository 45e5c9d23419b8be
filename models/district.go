// File: models/district.go
package models

// AllDistricts is the filter sentinel that disables district filtering.
const AllDistricts = "All"

// Districts lists every district a team may register from.
var Districts = []string{
	"Thiruvananthapuram", "Kollam", "Pathanamthitta", "Alappuzha", "Kottayam",
	"Idukki", "Ernakulam", "Thrissur", "Palakkad", "Malappuram",
	"Kozhikode", "Wayanad", "Kannur", "Kasaragod",
}

var districtSet = func() map[string]bool {
	m := make(map[string]bool, len(Districts))
	for _, d := range Districts {
		m[d] = true
	}
	return m
}()

// IsDistrict reports whether name is one of Districts (exact match).
func IsDistrict(name string) bool {
	return districtSet[name]
}
