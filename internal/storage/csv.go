package storage

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

// stateRow is one line of states.csv.
type stateRow struct {
	Time   float64 `csv:"time"`
	X      float64 `csv:"x_m"`
	Y      float64 `csv:"y_m"`
	Psi    float64 `csv:"psi_rad"`
	Vx     float64 `csv:"vx_m_per_s"`
	Vy     float64 `csv:"vy_m_per_s"`
	PsiDot float64 `csv:"psi_dot_rad_per_s"`
	Delta  float64 `csv:"delta_rad"`
	Sx     float64 `csv:"s_x"`
}

func rowsOf(tr *sim.Trajectory) []*stateRow {
	rows := make([]*stateRow, tr.Len())
	for i, st := range tr.States {
		rows[i] = &stateRow{
			Time: tr.Times[i], X: st.X, Y: st.Y, Psi: st.Psi,
			Vx: st.Vx, Vy: st.Vy, PsiDot: st.PsiDot, Delta: st.Delta, Sx: st.Sx,
		}
	}
	return rows
}

func (r *stateRow) state() vehicle.State {
	return vehicle.State{
		X: r.X, Y: r.Y, Psi: r.Psi,
		Vx: r.Vx, Vy: r.Vy, PsiDot: r.PsiDot, Delta: r.Delta, Sx: r.Sx,
	}
}

// WriteCSV writes tr in the states.csv layout.
func WriteCSV(w io.Writer, tr *sim.Trajectory) error {
	rows := rowsOf(tr)
	return gocsv.Marshal(&rows, w)
}

// ReadCSV parses the states.csv layout.
func ReadCSV(r io.Reader) (*sim.Trajectory, error) {
	var rows []*stateRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	tr := &sim.Trajectory{
		Times:  make([]float64, len(rows)),
		States: make([]vehicle.State, len(rows)),
	}
	for i, r := range rows {
		tr.Times[i] = r.Time
		tr.States[i] = r.state()
	}
	return tr, nil
}

func writeStates(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, func(w io.Writer) error {
		return WriteCSV(w, tr)
	})
}

func readStates(path string) (*sim.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
