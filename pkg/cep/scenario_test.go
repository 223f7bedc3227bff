package cep

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// price reads attribute 0 (the sole attribute mkEvent populates) as an
// int64 for readable assertions below.
func price(ev StreamEvent) int64 {
	return ev.Attr(0).Int64
}

var _ = Describe("A -> B, non-EVERY", func() {
	It("completes once per disjoint A/B pair (S1)", func() {
		var completions []FlatRow
		cp, err := NewBuilder(StateTypePattern).
			AddStep(StepConfig{Alias: "A", StreamID: "A", Min: 1, Max: 1}).
			AddStep(StepConfig{Alias: "B", StreamID: "B", Min: 1, Max: 1}).
			Build(StreamRegistry{}, func(row FlatRow, ts time.Time) {
				completions = append(completions, row)
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(cp.OnEvent("A", mkEvent("A", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 3, Int64Value(3)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 4, Int64Value(4)))).To(Succeed())

		Expect(completions).To(HaveLen(2))
		Expect(completions[0].Rows[0][0].Int64).To(BeEquivalentTo(1))
		Expect(completions[0].Rows[1][0].Int64).To(BeEquivalentTo(2))
		Expect(completions[1].Rows[0][0].Int64).To(BeEquivalentTo(3))
		Expect(completions[1].Rows[1][0].Int64).To(BeEquivalentTo(4))
	})

	It("replaces a still-pending A with a later A (S2)", func() {
		var completions []FlatRow
		cp, err := NewBuilder(StateTypePattern).
			AddStep(StepConfig{Alias: "A", StreamID: "A", Min: 1, Max: 1}).
			AddStep(StepConfig{Alias: "B", StreamID: "B", Min: 1, Max: 1}).
			Build(StreamRegistry{}, func(row FlatRow, ts time.Time) {
				completions = append(completions, row)
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(cp.OnEvent("A", mkEvent("A", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 3, Int64Value(3)))).To(Succeed())

		Expect(completions).To(HaveLen(1))
		Expect(completions[0].Rows[0][0].Int64).To(BeEquivalentTo(2))
		Expect(completions[0].Rows[1][0].Int64).To(BeEquivalentTo(3))
	})
})

var _ = Describe("EVERY (A -> B)", func() {
	It("produces one completion per A that arrived before B (S3)", func() {
		var completions []FlatRow
		cp, err := NewBuilder(StateTypePattern).
			AddStep(StepConfig{Alias: "A", StreamID: "A", Min: 1, Max: 1}).
			AddStep(StepConfig{Alias: "B", StreamID: "B", Min: 1, Max: 1}).
			SetEvery(true).
			Build(StreamRegistry{}, func(row FlatRow, ts time.Time) {
				completions = append(completions, row)
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(cp.OnEvent("A", mkEvent("A", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 3, Int64Value(3)))).To(Succeed())

		Expect(completions).To(HaveLen(2))
		Expect(completions[0].Rows[0][0].Int64).To(BeEquivalentTo(1))
		Expect(completions[0].Rows[1][0].Int64).To(BeEquivalentTo(3))
		Expect(completions[1].Rows[0][0].Int64).To(BeEquivalentTo(2))
		Expect(completions[1].Rows[1][0].Int64).To(BeEquivalentTo(3))
	})

	// S4 exercises EVERY A{2,3} -> B with four A arrivals ahead of one B.
	// Every contiguous A-subsequence of length 2 or 3 ending before B
	// forwards its own window to B: {A1A2}, {A1A2A3}, {A2A3},
	// {A2A3A4}, {A3A4} — five windows, matching invariant 5's count of
	// distinct A-subsequences of length in [m,M] ending strictly before
	// B, which is the one unambiguous cross-check available once the
	// windows are enumerated by hand.
	It("completes once per sliding A-window of length in [2,3] (S4)", func() {
		var completions []FlatRow
		cp, err := NewBuilder(StateTypePattern).
			AddStep(StepConfig{Alias: "A", StreamID: "A", Min: 2, Max: 3}).
			AddStep(StepConfig{Alias: "B", StreamID: "B", Min: 1, Max: 1}).
			SetEvery(true).
			Build(StreamRegistry{}, func(row FlatRow, ts time.Time) {
				completions = append(completions, row)
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(cp.OnEvent("A", mkEvent("A", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 3, Int64Value(3)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 4, Int64Value(4)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 5, Int64Value(5)))).To(Succeed())

		Expect(completions).To(HaveLen(5))
		for _, row := range completions {
			Expect(row.Rows[1][0].Int64).To(BeEquivalentTo(5))
		}
	})
})

var _ = Describe("collection aggregators over A{3} -> B (S5)", func() {
	var se *StateEvent

	BeforeEach(func() {
		se = NewStateEvent(2, testEpoch)
		se.Append(0, mkEvent("A", 1, Int64Value(10)))
		se.Append(0, mkEvent("A", 2, Int64Value(20)))
		se.Append(0, mkEvent("A", 3, Int64Value(30)))
		se.Append(1, mkEvent("B", 4, Int64Value(0)))
	})

	It("computes count, sum, avg, min, max over the A chain", func() {
		Expect(CountAggregate(se, 0).Int64).To(BeEquivalentTo(3))
		Expect(SumAggregate(se, 0, 0, true).Int64).To(BeEquivalentTo(60))
		Expect(AvgAggregate(se, 0, 0).Float64).To(BeEquivalentTo(20.0))
		Expect(MinAggregate(se, 0, 0).Int64).To(BeEquivalentTo(10))
		Expect(MaxAggregate(se, 0, 0).Int64).To(BeEquivalentTo(30))
	})

	It("resolves indexed access against the A chain (S6)", func() {
		first := IndexedVariable{Position: 0, Index: AtIndex(0), AttrIndex: 0}
		last := IndexedVariable{Position: 0, Index: AtLast, AttrIndex: 0}
		outOfRange := IndexedVariable{Position: 0, Index: AtIndex(5), AttrIndex: 0}

		Expect(first.Eval(se).Int64).To(BeEquivalentTo(10))
		Expect(last.Eval(se).Int64).To(BeEquivalentTo(30))
		Expect(outOfRange.Eval(se).IsNull()).To(BeTrue())
	})
})

var _ = Describe("logical AND at a middle position: X -> (A AND B) -> C (S7)", func() {
	buildPattern := func(completions *[]FlatRow) *CompiledPattern {
		cp, err := NewBuilder(StateTypePattern).
			AddStep(StepConfig{Alias: "X", StreamID: "X", Min: 1, Max: 1}).
			AddLogicalGroup(LogicalAnd,
				StepConfig{Alias: "A", StreamID: "A", Min: 1, Max: 1},
				StepConfig{Alias: "B", StreamID: "B", Min: 1, Max: 1}).
			AddStep(StepConfig{Alias: "C", StreamID: "C", Min: 1, Max: 1}).
			Build(StreamRegistry{}, func(row FlatRow, ts time.Time) {
				*completions = append(*completions, row)
			})
		Expect(err).NotTo(HaveOccurred())
		return cp
	}

	It("matches when A arrives before B", func() {
		var completions []FlatRow
		cp := buildPattern(&completions)

		Expect(cp.OnEvent("X", mkEvent("X", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 3, Int64Value(3)))).To(Succeed())
		Expect(cp.OnEvent("C", mkEvent("C", 4, Int64Value(4)))).To(Succeed())

		Expect(completions).To(HaveLen(1))
	})

	It("matches when B arrives before A (order-independent)", func() {
		var completions []FlatRow
		cp := buildPattern(&completions)

		Expect(cp.OnEvent("X", mkEvent("X", 1, Int64Value(1)))).To(Succeed())
		Expect(cp.OnEvent("B", mkEvent("B", 2, Int64Value(2)))).To(Succeed())
		Expect(cp.OnEvent("A", mkEvent("A", 3, Int64Value(3)))).To(Succeed())
		Expect(cp.OnEvent("C", mkEvent("C", 4, Int64Value(4)))).To(Succeed())

		Expect(completions).To(HaveLen(1))
	})
})
