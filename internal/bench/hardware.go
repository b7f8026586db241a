package bench

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Hardware describes the machine the benchmark ran on.
type Hardware struct {
	OS       string
	Arch     string
	NumCPU   int
	Features []string
	BestISA  string
}

// DetectHardware probes the CPU feature flags relevant to f32 GEMM.
func DetectHardware() Hardware {
	hw := Hardware{
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
		NumCPU: runtime.NumCPU(),
	}

	add := func(ok bool, name string) {
		if ok {
			hw.Features = append(hw.Features, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41 || cpu.X86.HasSSE42, "SSE4")
		add(cpu.X86.HasAVX, "AVX")
		add(cpu.X86.HasAVX2, "AVX2")
		add(cpu.X86.HasFMA, "FMA")
		add(cpu.X86.HasAVX512F, "AVX512F")
		add(cpu.X86.HasAVX512BW, "AVX512BW")
		add(cpu.X86.HasAVX512VL, "AVX512VL")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "NEON")
		add(cpu.ARM64.HasFPHP, "FP16")
		add(cpu.ARM64.HasSVE, "SVE")
		add(cpu.ARM64.HasSVE2, "SVE2")
	}

	hw.BestISA = bestISA()
	return hw
}

// bestISA names the widest vector extension usable for GEMM.
func bestISA() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "AVX512"
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		return "AVX2"
	case cpu.X86.HasSSE41 || cpu.X86.HasSSE42:
		return "SSE4"
	case cpu.ARM64.HasSVE2:
		return "SVE2"
	case cpu.ARM64.HasSVE:
		return "SVE"
	case cpu.ARM64.HasASIMD:
		return "NEON"
	}
	return "scalar"
}
