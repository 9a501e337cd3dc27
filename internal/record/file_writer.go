package record

import (
	"encoding/json"
	"os"

	"photonlink-sim/internal/cosim"
)

// FileWriter streams rows to JSONL files as chunks complete, so a long run
// leaves usable logs even if it is aborted. Any of the three paths may be
// empty to skip that stream.
type FileWriter struct {
	eventFile  *os.File
	stateFile  *os.File
	sampleFile *os.File
	eventEnc   *json.Encoder
	stateEnc   *json.Encoder
	sampleEnc  *json.Encoder
}

// NewFileWriter creates the requested log files.
func NewFileWriter(eventPath, statePath, samplePath string) (*FileWriter, error) {
	fw := &FileWriter{}
	open := func(path string) (*os.File, *json.Encoder, error) {
		if path == "" {
			return nil, nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			fw.Close()
			return nil, nil, err
		}
		return f, json.NewEncoder(f), nil
	}

	var err error
	if fw.eventFile, fw.eventEnc, err = open(eventPath); err != nil {
		return nil, err
	}
	if fw.stateFile, fw.stateEnc, err = open(statePath); err != nil {
		return nil, err
	}
	if fw.sampleFile, fw.sampleEnc, err = open(samplePath); err != nil {
		return nil, err
	}
	return fw, nil
}

// WriteChunk appends the chunk's rows to the enabled streams.
func (f *FileWriter) WriteChunk(_ cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	if f.eventEnc != nil {
		for _, ev := range events {
			if err := f.eventEnc.Encode(ev); err != nil {
				return err
			}
		}
	}
	if f.stateEnc != nil {
		for _, st := range states {
			if err := f.stateEnc.Encode(st); err != nil {
				return err
			}
		}
	}
	if f.sampleEnc != nil {
		for _, s := range samples {
			if err := f.sampleEnc.Encode(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.eventFile, f.stateFile, f.sampleFile} {
		if file != nil {
			if e := file.Close(); e != nil && err == nil {
				err = e
			}
		}
	}
	return err
}
