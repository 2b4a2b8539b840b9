package entity

// ServerContext is the "server" section of a notice. It is rebuilt for every
// notice because the memory figures are point-in-time.
type ServerContext struct {
	EnvironmentName string      `json:"environment_name"`
	Hostname        string      `json:"hostname"`
	ProjectRoot     ProjectRoot `json:"project_root"`
	Stats           Stats       `json:"stats"`
}

// ProjectRoot holds the install path of the running program.
type ProjectRoot struct {
	Path string `json:"path"`
}

// Stats wraps runtime statistics.
type Stats struct {
	Mem Mem `json:"mem"`
}

// Mem holds memory figures in megabytes. FreeTotal is never populated and
// always encodes as null.
type Mem struct {
	Total     float64  `json:"total"`
	Free      float64  `json:"free"`
	FreeTotal *float64 `json:"free_total"`
}
