// Package parse converts raw model output into Go values. Models frequently
// wrap JSON in markdown code fences or emit slightly broken JSON (unquoted
// keys, single quotes, trailing commas), so the package strips fences and
// runs automatic JSON repair before giving up with an error.
//
// The entry point is the generic [StringAs] function, which handles both
// primitive targets (string, bool, int, uint, float) and complex targets
// (structs, maps, slices) behind one API.
package parse
