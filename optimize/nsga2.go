package optimize

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Errors returned by the genetic algorithm driver.
var (
	ErrNilEvaluate = errors.New("optimize: evaluate function must not be nil")
	ErrNilSpace    = errors.New("optimize: space must not be nil")
)

// EvaluateFunc scores a design vector: the objective values to minimize and
// the total constraint violation, zero when feasible.
type EvaluateFunc func(x []float64) (objectives []float64, violation float64)

// Config holds the NSGA-II run parameters.
type Config struct {
	// PopulationSize is the number of individuals per generation.
	PopulationSize int

	// Generations is the fixed number of evolution steps.
	Generations int

	// CrossoverProb is the per-pair SBX crossover probability.
	CrossoverProb float64

	// MutationProb is the per-gene polynomial mutation probability. Zero
	// selects the conventional 1/dimension.
	MutationProb float64

	// EtaCrossover is the SBX distribution index. Larger values keep
	// children closer to their parents.
	EtaCrossover float64

	// EtaMutation is the polynomial mutation distribution index.
	EtaMutation float64

	// Seed initializes the private random source; runs with equal seeds and
	// inputs are reproducible.
	Seed int64
}

// DefaultConfig returns parameters that work well for the two- to
// six-dimensional enclosure spaces.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 60,
		Generations:    40,
		CrossoverProb:  0.9,
		EtaCrossover:   15,
		EtaMutation:    20,
		Seed:           1,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithPopulation sets the population size.
func WithPopulation(n int) Option {
	return func(c *Config) {
		if n > 1 {
			c.PopulationSize = n
		}
	}
}

// WithGenerations sets the number of generations.
func WithGenerations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Generations = n
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// ApplyOptions returns the default configuration with opts applied.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Individual is one evaluated design in the population.
type Individual struct {
	X          []float64
	Objectives []float64
	Violation  float64

	rank     int
	crowding float64
}

// Feasible reports whether all constraints are satisfied.
func (ind *Individual) Feasible() bool { return ind.Violation <= 0 }

// Result is the outcome of a run: the first non-dominated front of the final
// population. Success is false when no feasible design was found; the front
// then holds the least-violating candidates and Warnings explains why.
type Result struct {
	Front       []Individual
	Evaluations int
	Success     bool
	Warnings    []string
}

// Run evolves the population and returns the final Pareto front. An
// infeasible or degenerate search is reported through Result, not as an
// error; errors cover only misuse.
func Run(space *Space, evaluate EvaluateFunc, opts ...Option) (*Result, error) {
	if space == nil {
		return nil, ErrNilSpace
	}

	if evaluate == nil {
		return nil, ErrNilEvaluate
	}

	cfg := ApplyOptions(opts...)
	rng := rand.New(rand.NewSource(cfg.Seed))

	mutProb := cfg.MutationProb
	if mutProb <= 0 {
		mutProb = 1 / float64(space.Dim())
	}

	evals := 0

	score := func(x []float64) Individual {
		objs, violation := evaluate(x)
		evals++

		return Individual{X: x, Objectives: objs, Violation: violation}
	}

	pop := make([]Individual, cfg.PopulationSize)
	for i := range pop {
		pop[i] = score(space.Random(rng))
	}

	rankAndCrowd(pop)

	for range cfg.Generations {
		offspring := make([]Individual, 0, cfg.PopulationSize)

		for len(offspring) < cfg.PopulationSize {
			p1 := tournament(pop, rng)
			p2 := tournament(pop, rng)

			c1, c2 := crossover(p1.X, p2.X, cfg, rng)
			mutate(c1, space, mutProb, cfg.EtaMutation, rng)
			mutate(c2, space, mutProb, cfg.EtaMutation, rng)
			space.Clamp(c1)
			space.Clamp(c2)

			offspring = append(offspring, score(c1))
			if len(offspring) < cfg.PopulationSize {
				offspring = append(offspring, score(c2))
			}
		}

		pop = environmentalSelection(append(pop, offspring...), cfg.PopulationSize)
	}

	return finish(pop, evals), nil
}

func finish(pop []Individual, evals int) *Result {
	rankAndCrowd(pop)

	front := make([]Individual, 0)
	feasible := false

	for _, ind := range pop {
		if ind.rank == 0 {
			front = append(front, ind)
		}

		if ind.Feasible() {
			feasible = true
		}
	}

	res := &Result{Front: front, Evaluations: evals, Success: feasible}

	if !feasible {
		res.Warnings = append(res.Warnings,
			"no feasible design found; front holds the least-violating candidates")
	}

	allPenalized := true

	for _, ind := range front {
		for _, o := range ind.Objectives {
			if o < InvalidPenalty {
				allPenalized = false
			}
		}
	}

	if allPenalized {
		res.Warnings = append(res.Warnings,
			"every front member decoded to an invalid geometry")
	}

	return res
}

// dominates implements constraint domination: feasible beats infeasible,
// less violation beats more, and among feasible designs plain Pareto
// dominance applies.
func dominates(a, b *Individual) bool {
	af, bf := a.Feasible(), b.Feasible()

	switch {
	case af && !bf:
		return true
	case !af && bf:
		return false
	case !af && !bf:
		return a.Violation < b.Violation
	}

	better := false

	for i := range a.Objectives {
		if a.Objectives[i] > b.Objectives[i] {
			return false
		}

		if a.Objectives[i] < b.Objectives[i] {
			better = true
		}
	}

	return better
}

// rankAndCrowd assigns non-domination ranks and crowding distances in place.
func rankAndCrowd(pop []Individual) {
	fronts := sortNonDominated(pop)

	for _, front := range fronts {
		assignCrowding(pop, front)
	}
}

// sortNonDominated runs the fast non-dominated sort and returns the fronts
// as index slices into pop.
func sortNonDominated(pop []Individual) [][]int {
	n := len(pop)
	dominatedBy := make([][]int, n)
	domCount := make([]int, n)

	var fronts [][]int

	current := make([]int, 0)

	for i := range pop {
		for j := range pop {
			if i == j {
				continue
			}

			if dominates(&pop[i], &pop[j]) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if dominates(&pop[j], &pop[i]) {
				domCount[i]++
			}
		}

		if domCount[i] == 0 {
			pop[i].rank = 0
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		fronts = append(fronts, current)
		next := make([]int, 0)

		for _, i := range current {
			for _, j := range dominatedBy[i] {
				domCount[j]--
				if domCount[j] == 0 {
					pop[j].rank = len(fronts)
					next = append(next, j)
				}
			}
		}

		current = next
	}

	return fronts
}

// assignCrowding computes the crowding distance for one front.
func assignCrowding(pop []Individual, front []int) {
	for _, i := range front {
		pop[i].crowding = 0
	}

	if len(front) == 0 {
		return
	}

	nObj := len(pop[front[0]].Objectives)

	for m := range nObj {
		sorted := make([]int, len(front))
		copy(sorted, front)

		sort.Slice(sorted, func(a, b int) bool {
			return pop[sorted[a]].Objectives[m] < pop[sorted[b]].Objectives[m]
		})

		lo := pop[sorted[0]].Objectives[m]
		hi := pop[sorted[len(sorted)-1]].Objectives[m]

		pop[sorted[0]].crowding = math.Inf(1)
		pop[sorted[len(sorted)-1]].crowding = math.Inf(1)

		if hi == lo {
			continue
		}

		for k := 1; k < len(sorted)-1; k++ {
			span := pop[sorted[k+1]].Objectives[m] - pop[sorted[k-1]].Objectives[m]
			pop[sorted[k]].crowding += span / (hi - lo)
		}
	}
}

// tournament picks the better of two random individuals by rank, then
// crowding.
func tournament(pop []Individual, rng *rand.Rand) *Individual {
	a := &pop[rng.Intn(len(pop))]
	b := &pop[rng.Intn(len(pop))]

	switch {
	case a.rank < b.rank:
		return a
	case b.rank < a.rank:
		return b
	case a.crowding > b.crowding:
		return a
	default:
		return b
	}
}

// crossover applies simulated binary crossover gene-wise.
func crossover(p1, p2 []float64, cfg Config, rng *rand.Rand) ([]float64, []float64) {
	c1 := make([]float64, len(p1))
	c2 := make([]float64, len(p2))
	copy(c1, p1)
	copy(c2, p2)

	if rng.Float64() > cfg.CrossoverProb {
		return c1, c2
	}

	for i := range c1 {
		if rng.Float64() > 0.5 {
			continue
		}

		u := rng.Float64()

		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(cfg.EtaCrossover+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(cfg.EtaCrossover+1))
		}

		x1, x2 := c1[i], c2[i]
		c1[i] = 0.5 * ((1+beta)*x1 + (1-beta)*x2)
		c2[i] = 0.5 * ((1-beta)*x1 + (1+beta)*x2)
	}

	return c1, c2
}

// mutate applies polynomial mutation gene-wise within the space bounds.
func mutate(x []float64, space *Space, prob, eta float64, rng *rand.Rand) {
	for i, r := range space.Ranges() {
		if rng.Float64() > prob {
			continue
		}

		u := rng.Float64()
		span := r.Max - r.Min

		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}

		x[i] += delta * span
	}
}

// environmentalSelection keeps the best n of the combined population by
// rank, breaking ties by crowding distance.
func environmentalSelection(pop []Individual, n int) []Individual {
	rankAndCrowd(pop)

	sort.SliceStable(pop, func(a, b int) bool {
		if pop[a].rank != pop[b].rank {
			return pop[a].rank < pop[b].rank
		}

		return pop[a].crowding > pop[b].crowding
	})

	out := make([]Individual, n)
	copy(out, pop[:n])

	return out
}
