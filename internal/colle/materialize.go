package colle

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
)

// materialize writes the solver's solution back into an Assignment: for
// each (slot, week), the single group g with x[s,w,g]=1, or nothing.
func materialize(model *Model, response *cmpb.CpSolverResponse) Assignment {
	assignment := NewAssignment()
	for key, v := range model.Vars {
		if cpmodel.SolutionBooleanValue(response, v) {
			assignment.Set(key.slot, key.week, key.group)
		}
	}
	return assignment
}
