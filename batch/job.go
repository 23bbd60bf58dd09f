// Package batch prices lists of jobs on a worker pool. It is shared by the
// batch CLI and the HTTP API.
package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/bcdannyboy/optval/metrics"
	"github.com/bcdannyboy/optval/models"
	"github.com/bcdannyboy/optval/pricing"
	"github.com/bcdannyboy/optval/probability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xhhuango/json"
	"gonum.org/v1/gonum/mat"
)

// PriceDecimals is the precision of reported prices.
const PriceDecimals = 8

const (
	DrawsAntithetic = "antithetic"
	DrawsStratified = "stratified"
)

// DrawSpec asks for a generated draw matrix. Stratified draws are a single
// column and only serve European contracts.
type DrawSpec struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Seed  uint64 `json:"seed"`
}

type Job struct {
	ID     string              `json:"id,omitempty"`
	Market models.MarketParams `json:"market"`
	Option models.OptionParams `json:"option"`
	Draws  *DrawSpec           `json:"draws,omitempty"`
}

type Result struct {
	ID      string            `json:"id"`
	Method  models.Method     `json:"method"`
	Option  models.OptionKind `json:"option"`
	Price   *decimal.Decimal  `json:"price,omitempty"`
	Error   string            `json:"error,omitempty"`
	Elapsed float64           `json:"elapsed_ms"`

	err error
}

// Err returns the pricing error, if any.
func (r Result) Err() error { return r.err }

// Defaults fill in fields a job leaves at zero. Step counts left at zero
// here too fall back to models.DefaultSteps.
type Defaults struct {
	TimeSteps  int
	PriceSteps int
	Draws      int
	Seed       uint64
}

func (d Defaults) steps() (timeSteps, priceSteps int) {
	timeSteps, priceSteps = d.TimeSteps, d.PriceSteps
	if timeSteps == 0 {
		timeSteps = models.DefaultSteps
	}
	if priceSteps == 0 {
		priceSteps = models.DefaultSteps
	}
	return timeSteps, priceSteps
}

// Prepare validates a job and builds its model and contract, generating draws
// for Monte Carlo jobs.
func Prepare(job Job, d Defaults) (*models.MarketModel, *models.OptionContract, error) {
	p := job.Market
	timeSteps, priceSteps := d.steps()
	if p.TimeSteps == 0 {
		p.TimeSteps = timeSteps
	}
	if p.PriceSteps == 0 {
		p.PriceSteps = priceSteps
	}

	option, err := models.NewOptionContract(job.Option)
	if err != nil {
		return nil, nil, err
	}
	model, err := models.NewMarketModel(p)
	if err != nil {
		return nil, nil, err
	}
	if model.Method() != models.MonteCarlo || model.Draws() != nil {
		return model, option, nil
	}

	spec := DrawSpec{Kind: DrawsAntithetic, Count: d.Draws, Seed: d.Seed}
	if job.Draws != nil {
		spec = *job.Draws
		if spec.Kind == "" {
			spec.Kind = DrawsAntithetic
		}
		if spec.Count == 0 {
			spec.Count = d.Draws
		}
	}

	draws, err := generate(spec, option.Kind(), model.TimeSteps())
	if err != nil {
		return nil, nil, err
	}
	model, err = model.WithDraws(draws)
	if err != nil {
		return nil, nil, err
	}
	return model, option, nil
}

func generate(spec DrawSpec, kind models.OptionKind, timeSteps int) (mat.Matrix, error) {
	const fn = "batch.Prepare"

	steps := timeSteps
	if kind == models.European {
		steps = 1
	}
	switch spec.Kind {
	case DrawsAntithetic:
		d, err := probability.Antithetic(spec.Count, steps, spec.Seed)
		if err != nil {
			return nil, &models.ValidationError{Func: fn, Field: "draws", Value: spec.Count, Reason: err.Error()}
		}
		return d, nil
	case DrawsStratified:
		if steps != 1 {
			return nil, &models.ValidationError{Func: fn, Field: "draws.kind", Value: spec.Kind, Reason: "only valid for european contracts"}
		}
		d, err := probability.Stratified(spec.Count)
		if err != nil {
			return nil, &models.ValidationError{Func: fn, Field: "draws", Value: spec.Count, Reason: err.Error()}
		}
		return d, nil
	default:
		return nil, &models.ValidationError{Func: fn, Field: "draws.kind", Value: spec.Kind, Reason: "unknown draw generator"}
	}
}

// PriceJob prepares and prices one job. Failures are reported in the result.
func PriceJob(reg *pricing.Registry, job Job, d Defaults) Result {
	start := time.Now()
	res := Result{ID: job.ID, Method: job.Market.Method, Option: job.Option.Kind}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	price, err := priceJob(reg, job, d)
	metrics.ObservePricing(res.Method, res.Option, start, err)
	res.Elapsed = float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		res.Error, res.err = err.Error(), err
		return res
	}
	px := decimal.NewFromFloat(price).Round(PriceDecimals)
	res.Price = &px
	return res
}

func priceJob(reg *pricing.Registry, job Job, d Defaults) (float64, error) {
	model, option, err := Prepare(job, d)
	if err != nil {
		return 0, err
	}
	return reg.Price(model, option)
}

// ReadJobs decodes a JSON array of jobs.
func ReadJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	if err := json.NewDecoder(r).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("batch: decode jobs: %w", err)
	}
	return jobs, nil
}

// WriteResults encodes results as an indented JSON array.
func WriteResults(w io.Writer, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode results: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
