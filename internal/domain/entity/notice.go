package entity

// Notice is the complete document posted to the error tracker for one
// reported error.
type Notice struct {
	Notifier NotifierIdentity `json:"notifier"`
	Error    ErrorDescriptor  `json:"error"`
	Server   ServerContext    `json:"server"`
	Request  RequestContext   `json:"request"`
}
