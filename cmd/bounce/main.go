// Command bounce renders the synthesizer offline to a WAV file. It is a
// development/test harness, not part of the real-time contract.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cwbudde/subtractive-engine/pkg/engine"
)

func main() {
	note := flag.Int("note", 60, "MIDI note number to render")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127), informational only")
	duration := flag.Float64("duration", 2.0, "Total render duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff this many seconds in")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	waveform := flag.Int("waveform", 0, "Oscillator waveform index (0=Sine,1=Saw,2=Square,3=Triangle)")
	cutoff := flag.Float64("cutoff", 0.5, "Filter cutoff, normalized [0,1]")
	resonance := flag.Float64("resonance", 0.2, "Filter resonance, normalized [0,1]")
	chorusOn := flag.Bool("chorus", false, "Enable chorus")
	delayOn := flag.Bool("delay", false, "Enable delay")
	reverbOn := flag.Bool("reverb", true, "Enable reverb")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	fmt.Printf("Rendering note %d, velocity %d, for %.2fs at %d Hz (waveform %d)...\n",
		*note, *velocity, *duration, *sampleRate, *waveform)

	e := engine.New(float64(*sampleRate))
	e.SetWaveform(*waveform)
	e.SetFilterCutoff(*cutoff)
	e.SetFilterResonance(*resonance)
	e.SetChorusEnabled(*chorusOn)
	e.SetDelayEnabled(*delayOn)
	e.SetReverbEnabled(*reverbOn)

	e.NoteOn(*note)

	const blockSize = 128
	totalFrames := int(float64(*sampleRate) * *duration)
	releaseAtFrame := int(float64(*sampleRate) * *releaseAfter)

	samples := make([]float32, 0, totalFrames)
	buf := make([]float64, blockSize)

	framesRendered := 0
	noteReleased := false
	for framesRendered < totalFrames {
		framesToRender := blockSize
		if framesRendered+framesToRender > totalFrames {
			framesToRender = totalFrames - framesRendered
		}

		if !noteReleased && framesRendered >= releaseAtFrame {
			e.NoteOff(*note)
			noteReleased = true
		}

		if err := e.Render(buf, framesToRender, float64(*sampleRate)); err != nil {
			fmt.Fprintf(os.Stderr, "render error: %v\n", err)
			os.Exit(1)
		}
		for _, s := range buf[:framesToRender] {
			samples = append(samples, float32(s))
		}
		framesRendered += framesToRender
	}

	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	const numChannels = 1
	encoder := wav.NewEncoder(file, *sampleRate, 16, numChannels, 1)
	defer encoder.Close()

	outBuf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: numChannels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(outBuf); err != nil {
		fmt.Fprintf(os.Stderr, "error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
}
