package sealed_test

import (
	"fmt"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure/sealed"
)

func ExampleNew() {
	drv, err := driver.New(driver.Spec{
		Mmd:  3.7817e-3,
		Cms:  9.5768e-4,
		Rms:  0.73861,
		Re:   2.6,
		Le:   0.35e-3,
		BL:   2.8613,
		Sd:   0.0086,
		Xmax: 3.0e-3,
	}, acoustic.Air())
	if err != nil {
		panic(err)
	}

	// A box as big as Vas doubles the effective stiffness.
	box, err := sealed.New(drv, drv.Vas())
	if err != nil {
		panic(err)
	}

	fmt.Printf("Fc=%.1f Hz Qtc=%.2f\n", box.Fc(), box.Qtc())

	// Output:
	// Fc=106.1 Hz Qtc=0.81
}
