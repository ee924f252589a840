package sg_test

import (
	"fmt"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/extend"
	"github.com/thomasrockhu/goforc/forc/sg"
)

func ExampleComputeDistribution() {
	// A 7x9 mesh carrying m = h*hr, whose mixed derivative is 1
	// everywhere.
	rows, cols := 7, 9
	field := make([][]float64, rows)
	reversal := make([][]float64, rows)
	moment := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		field[i] = make([]float64, cols)
		reversal[i] = make([]float64, cols)
		moment[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			h := -4 + float64(j)
			hr := -3 + float64(i)
			field[i][j] = h
			reversal[i][j] = hr
			moment[i][j] = h * hr
		}
	}
	d, err := dataset.New(field, reversal, moment, nil)
	if err != nil {
		panic(err)
	}

	out, err := sg.ComputeDistribution(d, sg.Options{
		SF:        1,
		Extension: extend.Leave,
		FitPoints: 10,
	})
	if err != nil {
		panic(err)
	}

	outRows, outCols := out.Shape()
	rho, err := out.Data(dataset.FieldDistribution)
	if err != nil {
		panic(err)
	}
	fmt.Println(outRows, outCols)
	fmt.Printf("%.4f\n", rho[3][6])
	// Output:
	// 7 12
	// -0.5000
}
