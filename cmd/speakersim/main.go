// Command speakersim simulates loudspeaker enclosures and recommends box
// designs for drivers from the built-in catalog.
//
// Usage:
//
//	speakersim [flags]
//
// Examples:
//
//	speakersim -list
//	speakersim -driver studio-8in -box sealed -vb 20
//	speakersim -driver sub-15in -box ported -vb 90 -fb 33 -sweep
//	speakersim -driver pro-12in -box ported -recommend -top 5
//	speakersim -driver classic-5in -box horn -throat 30 -mouth 2500 -length 1.2
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/assistant"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/enclosure/horn"
	"github.com/cwbudde/algo-speaker/enclosure/ported"
	"github.com/cwbudde/algo-speaker/enclosure/sealed"
	"github.com/cwbudde/algo-speaker/optimize"
	"github.com/cwbudde/algo-speaker/response"
)

func main() {
	driverName := flag.String("driver", "", "catalog driver name (use -list)")
	list := flag.Bool("list", false, "list catalog drivers")
	boxType := flag.String("box", "sealed", "enclosure type: sealed, ported or horn")

	vb := flag.Float64("vb", 0, "box volume in liters")
	fb := flag.Float64("fb", 0, "ported tuning frequency in Hz")
	throat := flag.Float64("throat", 0, "horn throat area in cm²")
	mouth := flag.Float64("mouth", 0, "horn mouth area in cm²")
	length := flag.Float64("length", 0, "horn axial length in m")
	flare := flag.Float64("flare", 1, "horn flare parameter T (1 = exponential)")
	rear := flag.Float64("rear", 10, "horn rear chamber volume in liters")

	voltage := flag.Float64("voltage", 2.83, "drive voltage in V rms")
	distance := flag.Float64("distance", 1, "listening distance in m")

	recommend := flag.Bool("recommend", false, "search for optimal designs instead of simulating")
	top := flag.Int("top", 3, "number of recommendations")
	seed := flag.Int64("seed", 1, "optimizer random seed")
	maxVolume := flag.Float64("max-vb", 0, "volume cap for -recommend in liters (0 = none)")

	sweep := flag.Bool("sweep", false, "print the full frequency sweep")
	fmin := flag.Float64("fmin", 10, "sweep start frequency in Hz")
	fmax := flag.Float64("fmax", 4000, "sweep end frequency in Hz")
	points := flag.Int("points", 60, "sweep points")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: speakersim [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Simulates loudspeaker enclosures and recommends box designs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  speakersim -list\n")
		fmt.Fprintf(os.Stderr, "  speakersim -driver studio-8in -box sealed -vb 20\n")
		fmt.Fprintf(os.Stderr, "  speakersim -driver sub-15in -box ported -vb 90 -fb 33 -sweep\n")
		fmt.Fprintf(os.Stderr, "  speakersim -driver pro-12in -box ported -recommend\n")
	}
	flag.Parse()

	repo := driver.Catalog()

	if *list {
		printCatalog(repo)
		return
	}

	if *driverName == "" {
		fmt.Fprintf(os.Stderr, "error: -driver is required (use -list to see the catalog)\n")
		os.Exit(1)
	}

	drv, err := repo.Load(*driverName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *recommend {
		runRecommend(drv, *boxType, *top, *seed, *maxVolume)
		return
	}

	opts := []enclosure.Option{
		enclosure.WithVoltage(*voltage),
		enclosure.WithDistance(*distance),
	}

	model, summary, err := buildModel(drv, *boxType, *vb, *fb, *throat, *mouth, *length, *flare, *rear, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printSummary(drv, model, summary, *fmin, *fmax)

	if *sweep {
		printSweep(model, *fmin, *fmax, *points)
	}
}

func printCatalog(repo driver.Repository) {
	names := make([]string, 0)
	for name := range repo.List() {
		names = append(names, name)
	}

	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Driver\tFs [Hz]\tQts\tVas [L]\tSd [cm²]\tRe [Ω]\n")
	fmt.Fprintf(tw, "------\t-------\t---\t-------\t--------\t------\n")

	for _, name := range names {
		drv, err := repo.Load(name)
		if err != nil {
			continue
		}

		fmt.Fprintf(tw, "%s\t%.1f\t%.3f\t%.1f\t%.1f\t%.2f\n",
			name,
			drv.Fs(),
			drv.Qts(),
			acoustic.CubicMetersToLiters(drv.Vas()),
			acoustic.SquareMetersToSquareCentimeters(drv.Sd()),
			drv.Re(),
		)
	}

	tw.Flush()
}

// kv is one summary row.
type kv struct {
	key   string
	value string
}

func buildModel(drv *driver.Parameters, boxType string, vbLiters, fb, throatCm2, mouthCm2, length, flare, rearLiters float64, opts []enclosure.Option) (enclosure.Model, []kv, error) {
	switch boxType {
	case "sealed":
		if vbLiters <= 0 {
			return nil, nil, fmt.Errorf("sealed box needs -vb")
		}

		box, err := sealed.New(drv, acoustic.LitersToCubicMeters(vbLiters), opts...)
		if err != nil {
			return nil, nil, err
		}

		return box, []kv{
			{"Fc [Hz]", fmt.Sprintf("%.1f", box.Fc())},
			{"Qtc", fmt.Sprintf("%.3f", box.Qtc())},
			{"Reference SPL [dB]", fmt.Sprintf("%.1f", box.ReferenceSPL())},
		}, nil

	case "ported":
		if vbLiters <= 0 || fb <= 0 {
			return nil, nil, fmt.Errorf("ported box needs -vb and -fb")
		}

		vbm := acoustic.LitersToCubicMeters(vbLiters)
		medium := drv.Medium()

		port, err := ported.SolvePort(vbm, fb, ported.DefaultPortBounds(), medium)
		if err != nil {
			return nil, nil, err
		}

		box, err := ported.New(drv, vbm, fb, port, opts...)
		if err != nil {
			return nil, nil, err
		}

		return box, []kv{
			{"Fb [Hz]", fmt.Sprintf("%.1f", box.Fb())},
			{"Port area [cm²]", fmt.Sprintf("%.1f", acoustic.SquareMetersToSquareCentimeters(port.Area))},
			{"Port length [cm]", fmt.Sprintf("%.1f", port.Length*100)},
		}, nil

	case "horn":
		if throatCm2 <= 0 || mouthCm2 <= 0 || length <= 0 {
			return nil, nil, fmt.Errorf("horn needs -throat, -mouth and -length")
		}

		seg, err := horn.NewHyperbolic(
			acoustic.SquareCentimetersToSquareMeters(throatCm2),
			acoustic.SquareCentimetersToSquareMeters(mouthCm2),
			length, flare)
		if err != nil {
			return nil, nil, err
		}

		h, err := horn.New(drv, []horn.Segment{seg}, 0,
			acoustic.LitersToCubicMeters(rearLiters), opts...)
		if err != nil {
			return nil, nil, err
		}

		return h, []kv{
			{"Cutoff [Hz]", fmt.Sprintf("%.1f", h.CutoffFrequency())},
			{"Compression ratio", fmt.Sprintf("%.2f", h.CompressionRatio())},
			{"Horn volume [L]", fmt.Sprintf("%.1f", acoustic.CubicMetersToLiters(seg.Volume()))},
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown box type %q", boxType)
	}
}

func printSummary(drv *driver.Parameters, model enclosure.Model, summary []kv, fmin, fmax float64) {
	freqs, err := response.LogGrid(fmin, fmax, 400)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	sw, err := model.Response(freqs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	spl := sw.SPL()

	rows := []kv{
		{"Driver Fs [Hz]", fmt.Sprintf("%.1f", drv.Fs())},
		{"Driver Qts", fmt.Sprintf("%.3f", drv.Qts())},
	}
	rows = append(rows, summary...)

	if ref, err := response.ReferenceLevel(freqs, spl, fmax/5, fmax); err == nil {
		if f3, err := response.CutoffLow(freqs, spl, ref, 3); err == nil {
			rows = append(rows, kv{"F3 [Hz]", fmt.Sprintf("%.1f", f3)})
		}

		rows = append(rows, kv{"Passband SPL [dB]", fmt.Sprintf("%.1f", ref)})
	}

	rows = append(rows, kv{"Max excursion [mm]", fmt.Sprintf("%.2f", sw.MaxExcursion()*1000)})

	if v := sw.MaxPortVelocity(); v > 0 {
		rows = append(rows, kv{"Max port velocity [m/s]", fmt.Sprintf("%.1f", v)})
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.key, r.value)
	}

	tw.Flush()
}

func printSweep(model enclosure.Model, fmin, fmax float64, points int) {
	freqs, err := response.LogGrid(fmin, fmax, points)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	sw, err := model.Response(freqs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nf [Hz]\tSPL [dB]\t|Z| [Ω]\tExcursion [mm]\n")
	fmt.Fprintf(tw, "------\t--------\t-------\t--------------\n")

	mag := sw.ImpedanceMagnitude()

	for i, p := range sw.Points {
		fmt.Fprintf(tw, "%.1f\t%.1f\t%.2f\t%.3f\n",
			p.Frequency, p.SPL, mag[i], p.Excursion*1000)
	}

	tw.Flush()
}

func runRecommend(drv *driver.Parameters, boxType string, top int, seed int64, maxVbLiters float64) {
	var enclosureType assistant.EnclosureType

	switch boxType {
	case "sealed":
		enclosureType = assistant.Sealed
	case "ported":
		enclosureType = assistant.Ported
	case "horn":
		enclosureType = assistant.FrontHorn
	default:
		fmt.Fprintf(os.Stderr, "error: unknown box type %q\n", boxType)
		os.Exit(1)
	}

	req := assistant.Request{
		Driver:    drv,
		Enclosure: enclosureType,
		MaxVolume: acoustic.LitersToCubicMeters(maxVbLiters),
		TopN:      top,
	}

	res, err := assistant.Recommend(req, optimize.WithSeed(seed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(res.Recommendations) == 0 {
		fmt.Fprintf(os.Stderr, "error: no designs found\n")
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tParameters\tF3 [Hz]\tRipple [dB]\tSize [L]\tConfidence\n")
	fmt.Fprintf(tw, "-\t----------\t-------\t-----------\t--------\t----------\n")

	for i, rec := range res.Recommendations {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.2f\t%.1f\t%.2f\n",
			i+1,
			formatParams(rec.Parameters),
			rec.Objectives["f3"],
			rec.Objectives["flatness"],
			rec.Objectives["size"],
			rec.Confidence,
		)
	}

	tw.Flush()
}

func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	out := ""

	for i, name := range names {
		if i > 0 {
			out += " "
		}

		v := params[name]

		switch name {
		case "Vb", "Vtc", "Vrc":
			out += fmt.Sprintf("%s=%.1fL", name, acoustic.CubicMetersToLiters(v))
		case "St", "Sm":
			out += fmt.Sprintf("%s=%.0fcm²", name, acoustic.SquareMetersToSquareCentimeters(v))
		default:
			out += fmt.Sprintf("%s=%.2f", name, v)
		}
	}

	return out
}
