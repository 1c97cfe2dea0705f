package pack

type Entry struct {
	Path string
	Data []byte
}

type ListEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}
