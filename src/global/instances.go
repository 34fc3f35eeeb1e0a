package global

import "github.com/seventv/AtlasProcessor/src/task"

type Instances struct {
	Runner *task.Runner
}
