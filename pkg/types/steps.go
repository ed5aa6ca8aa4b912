package types

// StepCount is the fixed number of stages in one delivery cycle.
const StepCount = 7

// stepCatalog maps step numbers to their fixed name and primary driver.
// The catalog is static: step identity is determined solely by number.
var stepCatalog = [StepCount]struct {
	name   string
	driver string
}{
	{"discovery", "product"},
	{"scoping", "product/engineering"},
	{"design", "design"},
	{"build", "engineering"},
	{"test", "qa"},
	{"launch", "product/engineering"},
	{"post-launch", "product"},
}

// ValidStepNumber reports whether n is within 1..StepCount.
func ValidStepNumber(n int) bool { return n >= 1 && n <= StepCount }

// StepName returns the fixed name for a step number, or "" when the
// number is out of range.
func StepName(n int) string {
	if !ValidStepNumber(n) {
		return ""
	}
	return stepCatalog[n-1].name
}

// StepDriver returns the primary-driver role for a step number, or ""
// when the number is out of range.
func StepDriver(n int) string {
	if !ValidStepNumber(n) {
		return ""
	}
	return stepCatalog[n-1].driver
}
