package colle

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// varKey identifies one sparse decision variable x[s,w,g].
type varKey struct {
	slot  int
	week  int
	group int
}

// dayHour groups slots that occupy the same clock position on the same
// day, used for teacher non-overlap and group cell uniqueness.
type dayHour struct {
	day      string
	startMin int
}

// teacherDayHour groups slots taught by the same teacher at the same
// clock position on the same day, used for teacher non-overlap.
type teacherDayHour struct {
	teacher string
	dayHour
}

// Model is the materialized CP-SAT model for one solve attempt, plus the
// bookkeeping needed to read a solution back into an Assignment.
type Model struct {
	Mode    Mode
	Builder *cpmodel.Builder
	Vars    map[varKey]cpmodel.BoolVar
	Catalog Catalog
	Policy  AlternationPolicy
}

// BuildModel materializes decision variables and posts all constraints for
// the given mode. Variables are created only when week parity matches slot
// parity, the teacher works that parity, and the group is in the matching
// eligibility set — absent variables are implicitly 0 in every sum.
func BuildModel(catalog Catalog, policy AlternationPolicy, mode Mode) (*Model, error) {
	if err := ValidateAlternationPolicy(policy); err != nil {
		return nil, err
	}

	builder := cpmodel.NewCpModelBuilder()
	m := &Model{
		Mode:    mode,
		Builder: builder,
		Vars:    make(map[varKey]cpmodel.BoolVar),
		Catalog: catalog,
		Policy:  policy,
	}

	for si, slot := range catalog.Slots {
		for _, w := range catalog.Weeks {
			if !slot.WorksParity(w.Parity) {
				continue
			}
			eligible := slot.EligibleGroups(w.Parity)
			for g := range eligible {
				key := varKey{slot: si, week: w.Number, group: g}
				m.Vars[key] = builder.NewBoolVar()
			}
		}
	}

	m.postC1SlotUniqueness()
	if mode != ModeMaximize {
		m.postC2TeacherNonOverlap()
		m.postC3SubjectCadence()
		m.postC4TeacherAlternation()
	}
	m.postC5GroupCellUniqueness()
	m.postC6OneCollePerDayPerGroup()
	m.postC7WeeklyLoad()
	m.postC8ConsecutiveForbidden()

	if mode == ModeMaximize {
		all := make([]cpmodel.BoolVar, 0, len(m.Vars))
		for _, v := range m.Vars {
			all = append(all, v)
		}
		m.Builder.Maximize(sumVars(all))
	}

	return m, nil
}

// sumVars builds a linear expression summing a set of boolean variables.
func sumVars(vars []cpmodel.BoolVar) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, v := range vars {
		expr.AddTerm(v, 1)
	}
	return expr
}

// postAtMostOne posts Σ vars ≤ 1. A group of zero or one variables is
// trivially satisfied and is skipped to keep the model small.
func postAtMostOne(builder *cpmodel.Builder, vars []cpmodel.BoolVar) {
	if len(vars) < 2 {
		return
	}
	builder.AddLessOrEqual(sumVars(vars), cpmodel.NewConstant(1))
}

// varsMatching collects the decision variables satisfying pred.
func (m *Model) varsMatching(pred func(varKey) bool) []cpmodel.BoolVar {
	var out []cpmodel.BoolVar
	for k, v := range m.Vars {
		if pred(k) {
			out = append(out, v)
		}
	}
	return out
}

// C1: ∀ slot s, week w: Σ_g x[s,w,g] ≤ 1.
func (m *Model) postC1SlotUniqueness() {
	for si := range m.Catalog.Slots {
		for _, w := range m.Catalog.Weeks {
			si, wn := si, w.Number
			vars := m.varsMatching(func(k varKey) bool { return k.slot == si && k.week == wn })
			postAtMostOne(m.Builder, vars)
		}
	}
}

// C2: ∀ week w, teacher t, day d, hour h: Σ over slots at (t,d,h), all g ≤ 1.
// Skipped in maximize mode.
func (m *Model) postC2TeacherNonOverlap() {
	groups := groupIndexesByTeacherDayHour(m.Catalog.Slots)
	for _, slotIdxs := range groups {
		if len(slotIdxs) < 2 {
			continue
		}
		for _, w := range m.Catalog.Weeks {
			wn := w.Number
			vars := m.varsMatching(func(k varKey) bool {
				return k.week == wn && containsInt(slotIdxs, k.slot)
			})
			postAtMostOne(m.Builder, vars)
		}
	}
}

// C3: ∀ group g, subject m with active rule of frequency f, window W of
// size f: Σ = 1 (strict) or ≥ 1 (relaxed). Skipped in maximize mode.
func (m *Model) postC3SubjectCadence() {
	for _, subject := range distinctSubjects(m.Catalog.Slots) {
		rule, active := m.Policy.Rule(subject)
		if !active {
			continue
		}
		windows := Windows(m.Catalog.Weeks, rule.Frequency)
		slotIdxs := slotIndexesWithSubject(m.Catalog.Slots, subject)
		for _, g := range m.Catalog.Groups {
			g := g
			for _, window := range windows {
				weekNums := weekNumbers(window)
				vars := m.varsMatching(func(k varKey) bool {
					return k.group == g && containsInt(slotIdxs, k.slot) && containsInt(weekNums, k.week)
				})
				expr := sumVars(vars)
				switch m.Mode {
				case ModeStrict:
					m.Builder.AddEquality(expr, cpmodel.NewConstant(1))
				case ModeRelaxed:
					m.Builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(1))
				}
			}
		}
	}
}

// C4: ∀ group g, subject m (frequency 2 only), teacher p teaching m,
// adjacent fortnights (Q_i, Q_{i+1}): Σ over (m, p, Q_i ∪ Q_{i+1}) ≤ 1.
// Skipped in maximize mode.
func (m *Model) postC4TeacherAlternation() {
	fortnights := Windows(m.Catalog.Weeks, 2)
	if len(fortnights) < 2 {
		return
	}
	for _, subject := range distinctSubjects(m.Catalog.Slots) {
		rule, active := m.Policy.Rule(subject)
		if !active || rule.Frequency != 2 {
			continue
		}
		for _, teacher := range teachersOfSubject(m.Catalog.Slots, subject) {
			slotIdxs := slotIndexesWithSubjectTeacher(m.Catalog.Slots, subject, teacher)
			for _, g := range m.Catalog.Groups {
				g := g
				for i := 0; i+1 < len(fortnights); i++ {
					weekNums := append(weekNumbers(fortnights[i]), weekNumbers(fortnights[i+1])...)
					vars := m.varsMatching(func(k varKey) bool {
						return k.group == g && containsInt(slotIdxs, k.slot) && containsInt(weekNums, k.week)
					})
					postAtMostOne(m.Builder, vars)
				}
			}
		}
	}
}

// C5: ∀ group g, week w, (day d, hour h): Σ over slots at (d,h) x[s,w,g] ≤ 1.
func (m *Model) postC5GroupCellUniqueness() {
	groups := groupIndexesByDayHour(m.Catalog.Slots)
	for _, slotIdxs := range groups {
		if len(slotIdxs) < 2 {
			continue
		}
		for _, g := range m.Catalog.Groups {
			g := g
			for _, w := range m.Catalog.Weeks {
				wn := w.Number
				vars := m.varsMatching(func(k varKey) bool {
					return k.group == g && k.week == wn && containsInt(slotIdxs, k.slot)
				})
				postAtMostOne(m.Builder, vars)
			}
		}
	}
}

// C6: ∀ group g, week w, day d: Σ over slots on day d x[s,w,g] ≤ 1.
func (m *Model) postC6OneCollePerDayPerGroup() {
	groups := groupIndexesByDay(m.Catalog.Slots)
	for _, slotIdxs := range groups {
		if len(slotIdxs) < 2 {
			continue
		}
		for _, g := range m.Catalog.Groups {
			g := g
			for _, w := range m.Catalog.Weeks {
				wn := w.Number
				vars := m.varsMatching(func(k varKey) bool {
					return k.group == g && k.week == wn && containsInt(slotIdxs, k.slot)
				})
				postAtMostOne(m.Builder, vars)
			}
		}
	}
}

// C7: ∀ group g, week w: Σ ≤ 4 in maximize mode; 1 ≤ Σ ≤ 4 otherwise.
func (m *Model) postC7WeeklyLoad() {
	for _, g := range m.Catalog.Groups {
		g := g
		for _, w := range m.Catalog.Weeks {
			wn := w.Number
			vars := m.varsMatching(func(k varKey) bool { return k.group == g && k.week == wn })
			m.Builder.AddLessOrEqual(sumVars(vars), cpmodel.NewConstant(4))
			if m.Mode != ModeMaximize {
				m.Builder.AddGreaterOrEqual(sumVars(vars), cpmodel.NewConstant(1))
			}
		}
	}
}

// C8: ∀ group g, week w, day d; for each ordered pair of slots (s1,s2) on
// day d with s1.end == s2.start: x[s1,w,g] + x[s2,w,g] ≤ 1.
func (m *Model) postC8ConsecutiveForbidden() {
	byDay := groupIndexesByDay(m.Catalog.Slots)
	for _, slotIdxs := range byDay {
		for _, i := range slotIdxs {
			for _, j := range slotIdxs {
				if i == j {
					continue
				}
				if m.Catalog.Slots[i].EndMin != m.Catalog.Slots[j].StartMin {
					continue
				}
				for _, g := range m.Catalog.Groups {
					for _, w := range m.Catalog.Weeks {
						v1, ok1 := m.Vars[varKey{slot: i, week: w.Number, group: g}]
						v2, ok2 := m.Vars[varKey{slot: j, week: w.Number, group: g}]
						if !ok1 || !ok2 {
							continue
						}
						postAtMostOne(m.Builder, []cpmodel.BoolVar{v1, v2})
					}
				}
			}
		}
	}
}

func groupIndexesByTeacherDayHour(slots []Slot) map[teacherDayHour][]int {
	out := make(map[teacherDayHour][]int)
	for i, s := range slots {
		key := teacherDayHour{teacher: s.Teacher, dayHour: dayHour{day: s.Day, startMin: s.StartMin}}
		out[key] = append(out[key], i)
	}
	return out
}

func groupIndexesByDayHour(slots []Slot) map[dayHour][]int {
	out := make(map[dayHour][]int)
	for i, s := range slots {
		key := dayHour{day: s.Day, startMin: s.StartMin}
		out[key] = append(out[key], i)
	}
	return out
}

func groupIndexesByDay(slots []Slot) map[string][]int {
	out := make(map[string][]int)
	for i, s := range slots {
		out[s.Day] = append(out[s.Day], i)
	}
	return out
}

func distinctSubjects(slots []Slot) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range slots {
		if _, ok := seen[s.Subject]; !ok {
			seen[s.Subject] = struct{}{}
			out = append(out, s.Subject)
		}
	}
	return out
}

func slotIndexesWithSubject(slots []Slot, subject string) []int {
	var out []int
	for i, s := range slots {
		if s.Subject == subject {
			out = append(out, i)
		}
	}
	return out
}

func slotIndexesWithSubjectTeacher(slots []Slot, subject, teacher string) []int {
	var out []int
	for i, s := range slots {
		if s.Subject == subject && s.Teacher == teacher {
			out = append(out, i)
		}
	}
	return out
}

func teachersOfSubject(slots []Slot, subject string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range slots {
		if s.Subject != subject {
			continue
		}
		if _, ok := seen[s.Teacher]; !ok {
			seen[s.Teacher] = struct{}{}
			out = append(out, s.Teacher)
		}
	}
	return out
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func weekNumbers(weeks []Week) []int {
	out := make([]int, len(weeks))
	for i, w := range weeks {
		out[i] = w.Number
	}
	return out
}
