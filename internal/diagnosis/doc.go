// Package diagnosis defines the structured result returned by the diagnosis
// model: either a repair plan or a nutrition breakdown.
//
// Diagnosis is a closed set of two variants selected by the is_food
// discriminator. Unmarshal normalizes out-of-range values so callers never
// see negative quantities or an unknown safety level.
package diagnosis
