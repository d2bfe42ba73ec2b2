package version

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/style"
	"github.com/spf13/viper"
)

const checkTimeout = 3 * time.Second

// Notify writes an upgrade hint to w when a newer release exists. Lookup failures stay silent.
func Notify(w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	latest, err := Latest(ctx)
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	_, _ = fmt.Fprintf(w, `
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/"+constant.Repository+"/releases/tag/v"+latest),
	)
}
