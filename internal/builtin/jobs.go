package builtin

import "fmt"

// Jobs implements "jobs": refresh job statuses, print each, then drop the
// completed ones from the job list.
func Jobs(ctx *Context, argv []string) int {
	ctx.Jobs.UpdateStatus()
	for _, j := range ctx.Jobs.Jobs() {
		fmt.Print(j.ListingLine())
	}
	ctx.Jobs.PruneCompleted()
	return 0
}
