package probe

// GeneralTrack holds container-level values from mediainfo's General track.
type GeneralTrack struct {
	Format       string
	RecordedDate string // Recorded_Date, the camera clock for DV
	EncodedDate  string
	FrameRate    float64
	Duration     float64 // seconds
	FileSize     int64
	Fields       map[string]string
}

// VideoTrack holds the first video track.
type VideoTrack struct {
	Format    string
	Width     int
	Height    int
	FrameRate float64
	ScanType  string // Progressive, Interlaced, MBAFF
	ScanOrder string
	Fields    map[string]string
}

// AudioTrack holds the first audio track.
type AudioTrack struct {
	Format       string
	Channels     int
	SamplingRate int
	Fields       map[string]string
}

// Report is the parsed output of one mediainfo call. Video and Audio are nil
// when the file has no such track.
type Report struct {
	Ref     string
	General GeneralTrack
	Video   *VideoTrack
	Audio   *AudioTrack
}

// RecordedDate returns the raw camera timestamp, if any.
func (r *Report) RecordedDate() string { return r.General.RecordedDate }

// FrameRate prefers the container rate and falls back to the video track.
// Zero means unknown.
func (r *Report) FrameRate() float64 {
	if r.General.FrameRate > 0 {
		return r.General.FrameRate
	}
	if r.Video != nil {
		return r.Video.FrameRate
	}
	return 0
}

// Height returns the frame height in pixels, or 0 without video.
func (r *Report) Height() int {
	if r.Video == nil {
		return 0
	}
	return r.Video.Height
}

// SampleRate returns the first audio track's rate in Hz, or 0.
func (r *Report) SampleRate() int {
	if r.Audio == nil {
		return 0
	}
	return r.Audio.SamplingRate
}
