package procpriority

import "os"

func pid() int { return os.Getpid() }
