//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-wavesynth/synth"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

const maxBlock = 128

var (
	globalSynth  *synth.Synth
	globalTable  *wavetable.Handle
	pending      []synth.Event
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmPitchBend", js.FuncOf(wasmPitchBend))
	js.Global().Set("wasmPressure", js.FuncOf(wasmPressure))
	js.Global().Set("wasmLoadWavetable", js.FuncOf(wasmLoadWavetable))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM wavesynth module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()

	globalTable = wavetable.NewHandle(nil)
	s, err := synth.NewSynth(sampleRate, synth.NewDefaultParams(), globalTable)
	if err != nil {
		println("Synth init failed:", err.Error())
		return nil
	}
	globalSynth = s
	pending = make([]synth.Event, 0, 64)
	outputBuffer = make([]float32, maxBlock*2)

	println("Synth initialized at", sampleRate, "Hz")
	return nil
}

// Events are queued and applied at the start of the next block.

func wasmNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalSynth == nil {
		return nil
	}
	note := args[0].Int()
	velocity := args[1].Int()
	if note < 0 || note > 127 || velocity < 1 {
		return nil
	}
	pending = append(pending, synth.NoteOn(0, 0, uint8(note), float32(min(velocity, 127))/127))
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	note := args[0].Int()
	if note < 0 || note > 127 {
		return nil
	}
	pending = append(pending, synth.NoteOff(0, 0, uint8(note)))
	return nil
}

func wasmPitchBend(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	pending = append(pending, synth.PitchBend(0, 0, float32(args[0].Float())))
	return nil
}

func wasmPressure(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	pending = append(pending, synth.ChannelPressure(0, 0, float32(args[0].Float())))
	return nil
}

// wasmLoadWavetable takes a Float32Array of raw slices and a slice length.
func wasmLoadWavetable(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalTable == nil {
		return false
	}
	data := args[0]
	length := data.Get("length").Int()
	if length == 0 {
		println("Wavetable data is empty")
		return false
	}

	bytes := js.Global().Get("Uint8Array").New(data.Get("buffer"), data.Get("byteOffset"), length*4)
	raw := make([]float32, length)
	js.CopyBytesToGo(unsafe.Slice((*byte)(unsafe.Pointer(&raw[0])), length*4), bytes)

	if err := globalTable.Rebuild(raw, args[1].Int()); err != nil {
		println("Failed to build wavetable:", err.Error())
		return false
	}
	println("Wavetable loaded:", globalTable.Load().Slices(), "slices")
	return true
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return 0
	}

	numFrames := min(args[0].Int(), maxBlock)

	output := globalSynth.Process(pending, numFrames)
	pending = pending[:0]

	copy(outputBuffer, output)

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
