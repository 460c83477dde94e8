package linear

import (
	"github.com/ezoic/celer/solver"
)

// config holds the hyperparameters shared by the estimators and the
// path functions. Defaults follow the reference solver configuration.
type config struct {
	alpha        float64
	maxIter      int
	maxEpochs    int
	gapFreq      int
	p0           int
	tol          float64
	prune        bool
	useAccel     bool
	betterLC     bool
	positive     bool
	fitIntercept bool
	warmStart    bool
	verbose      int
	eps          float64 // path length: alphaMin = eps * alphaMax
	nAlphas      int
	alphas       []float64 // explicit path grid, overrides eps/nAlphas
}

func defaultConfig() config {
	return config{
		alpha:        1.0,
		maxIter:      100,
		maxEpochs:    50000,
		gapFreq:      10,
		p0:           10,
		tol:          1e-4,
		prune:        true,
		useAccel:     true,
		fitIntercept: true,
		eps:          1e-3,
		nAlphas:      100,
	}
}

// Option is a configuration option for the estimators and path functions.
type Option func(*config)

// WithAlpha sets the regularization strength.
func WithAlpha(alpha float64) Option {
	return func(c *config) { c.alpha = alpha }
}

// WithMaxIter sets the outer iteration budget.
func WithMaxIter(maxIter int) Option {
	return func(c *config) { c.maxIter = maxIter }
}

// WithMaxEpochs sets the inner epoch budget per subproblem.
func WithMaxEpochs(maxEpochs int) Option {
	return func(c *config) { c.maxEpochs = maxEpochs }
}

// WithGapFreq sets the number of inner epochs between gap checks.
func WithGapFreq(gapFreq int) Option {
	return func(c *config) { c.gapFreq = gapFreq }
}

// WithP0 sets the initial working set size.
func WithP0(p0 int) Option {
	return func(c *config) { c.p0 = p0 }
}

// WithTol sets the duality gap tolerance.
func WithTol(tol float64) Option {
	return func(c *config) { c.tol = tol }
}

// WithPruning enables or disables working set pruning.
func WithPruning(prune bool) Option {
	return func(c *config) { c.prune = prune }
}

// WithAcceleration enables or disables dual extrapolation.
func WithAcceleration(useAccel bool) Option {
	return func(c *config) { c.useAccel = useAccel }
}

// WithBetterLipschitz enables refreshing the logistic curvature
// estimates from the current margins at every coordinate update.
func WithBetterLipschitz(betterLC bool) Option {
	return func(c *config) { c.betterLC = betterLC }
}

// WithPositive constrains the coefficients to be non-negative (Lasso only).
func WithPositive(positive bool) Option {
	return func(c *config) { c.positive = positive }
}

// WithFitIntercept controls whether an intercept is fitted (Lasso only).
func WithFitIntercept(fit bool) Option {
	return func(c *config) { c.fitIntercept = fit }
}

// WithWarmStart reuses the previous solution as initialization on the
// next Fit call.
func WithWarmStart(warmStart bool) Option {
	return func(c *config) { c.warmStart = warmStart }
}

// WithVerbose sets the verbosity level: 0 warnings only, 1 outer
// progress, 2 inner progress.
func WithVerbose(verbose int) Option {
	return func(c *config) { c.verbose = verbose }
}

// WithEps sets the path length: the grid stops at eps times the
// critical regularization alphaMax.
func WithEps(eps float64) Option {
	return func(c *config) { c.eps = eps }
}

// WithNAlphas sets the number of points on the regularization path.
func WithNAlphas(nAlphas int) Option {
	return func(c *config) { c.nAlphas = nAlphas }
}

// WithAlphas supplies an explicit regularization grid for the path
// functions; it is solved in decreasing order.
func WithAlphas(alphas []float64) Option {
	return func(c *config) { c.alphas = alphas }
}

func (c config) solverOptions() solver.Options {
	o := solver.DefaultOptions()
	o.MaxIter = c.maxIter
	o.MaxEpochs = c.maxEpochs
	o.GapFreq = c.gapFreq
	o.P0 = c.p0
	o.Tol = c.tol
	o.Prune = c.prune
	o.UseAccel = c.useAccel
	o.BetterLC = c.betterLC
	o.Verbose = c.verbose
	return o
}
