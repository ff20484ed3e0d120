package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/edit"
	"github.com/npillmayer/arcfit/space"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var fitCmd = &cobra.Command{
	Use:   "fit [scene]",
	Short: "Show the editing mode and the fitted circle of the selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runFit,
}

var (
	dragNode  string
	dragTo    string
	dragSteps int
)

var dragCmd = &cobra.Command{
	Use:   "drag [scene]",
	Short: "Drag a selected node and print the resulting scene",
	Long: `Runs one gesture: the node given by --node is dragged to --to in a number
of intermediate steps, as a pointer would do, and the gesture is finished.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrag,
}

var equalizeCmd = &cobra.Command{
	Use:   "equalize [scene]",
	Short: "Space the selected nodes evenly on their arc or circle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.OutOrStdout(), args[0], func(s *edit.Session, sc *scene) error {
			return s.EqualizeSpacing(sc.selection)
		})
	},
}

var splitCmd = &cobra.Command{
	Use:   "split [scene]",
	Short: "Insert a node into the longest connection of the selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.OutOrStdout(), args[0], func(s *edit.Session, sc *scene) error {
			n, err := s.SplitLongest(sc.selection)
			if err == nil {
				sc.selection = append(sc.selection, n)
			}
			return err
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [scene]",
	Short: "Remove the selected node which contributes the least arc length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.OutOrStdout(), args[0], func(s *edit.Session, sc *scene) error {
			return s.RemoveShortest(sc.selection)
		})
	},
}

func init() {
	dragCmd.Flags().StringVar(&dragNode, "node", "", "label of the dragged node")
	dragCmd.Flags().StringVar(&dragTo, "to", "", "target position x,y,z")
	dragCmd.Flags().IntVar(&dragSteps, "steps", 10, "number of drag updates")
	_ = dragCmd.MarkFlagRequired("node")
	_ = dragCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(fitCmd, dragCmd, equalizeCmd, splitCmd, mergeCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	sc, err := loadScene(args[0])
	if err != nil {
		return err
	}
	return describe(cmd.OutOrStdout(), sc)
}

// describe prints the mode chosen for the selection and its fitted circle.
func describe(w io.Writer, sc *scene) error {
	if len(sc.selection) <= 2 {
		fmt.Fprintf(w, "mode: %s\n", edit.TranslateMode)
		return nil
	}
	ordered, err := chain.Detect(sc.selection)
	if err == nil {
		m := edit.NewPinnedArcModel(edit.NewChain[edit.ArcParam](ordered), settings)
		m.Init(settings.UpHint())
		arc := m.Arc()
		fmt.Fprintf(w, "mode: %s\n", edit.PinnedArcMode)
		fmt.Fprintf(w, "center: %s\n", formatVec(arc.Center()))
		fmt.Fprintf(w, "radius: %.6g\n", arc.Circle.Radius)
		fmt.Fprintf(w, "arc: %s, %.6g°\n", arc.Choice(), arc.ArcAngle*180/math.Pi)
		fmt.Fprintf(w, "length: %.6g\n", arc.Length())
		for _, node := range m.Chain().Nodes() {
			fmt.Fprintf(w, "  %-8s theta %.6f\n", sc.label(node.Ref), node.Param.Theta)
		}
		return nil
	}
	if !errors.Is(err, chain.ErrInvalidTopology) {
		return err
	}
	m := edit.NewFreeCircleModel(edit.NewChain[edit.CircleParam](sc.selection))
	m.Init(settings.UpHint())
	fmt.Fprintf(w, "mode: %s (%v)\n", edit.FreeCircleMode, err)
	fmt.Fprintf(w, "center: %s\n", formatVec(m.Center()))
	fmt.Fprintf(w, "radius: %.6g\n", m.Radius())
	for _, node := range m.Chain().Nodes() {
		fmt.Fprintf(w, "  %-8s angle %.6f\n", sc.label(node.Ref), node.Param.Angle)
	}
	return nil
}

func runDrag(cmd *cobra.Command, args []string) error {
	to, err := parseVec(dragTo)
	if err != nil {
		return err
	}
	if dragSteps < 1 {
		return fmt.Errorf("steps must be positive, is %d", dragSteps)
	}
	return runCommand(cmd.OutOrStdout(), args[0], func(s *edit.Session, sc *scene) error {
		return drag(s, sc, dragNode, to, dragSteps)
	})
}

// drag runs a gesture on the selection, moving node label to pos in steps
// updates.
func drag(s *edit.Session, sc *scene, label string, to r3.Vec, steps int) error {
	n, err := sc.node(label)
	if err != nil {
		return err
	}
	from := n.Position()
	if _, err := s.Start(sc.selection, n); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pos := r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
		if err := s.Update(pos); err != nil && !errors.Is(err, edit.ErrNoRoom) {
			s.Cancel()
			return err
		}
	}
	return s.Finish()
}

// runCommand loads a scene, runs op in a fresh session and prints the
// resulting scene.
func runCommand(w io.Writer, path string, op func(*edit.Session, *scene) error) error {
	sc, err := loadScene(path)
	if err != nil {
		return err
	}
	s := edit.NewSession(settings, sc.graph, nil)
	if err := op(s, sc); err != nil {
		return err
	}
	return sc.write(w)
}

func formatVec(v r3.Vec) string {
	if !space.IsFinite(v) {
		return "(invalid)"
	}
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", v.X, v.Y, v.Z)
}
