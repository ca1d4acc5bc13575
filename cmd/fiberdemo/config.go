package main

// Config is fiberdemo's tunable set, loaded via internal/xconfig.Load.
type Config struct {
	QuantumUsecs int    `json:"QUANTUM_USECS"`
	MaxThreadNum int    `json:"MAX_THREAD_NUM"`
	StackSize    int    `json:"STACK_SIZE"`
	LogLevel     string `json:"LOG_LEVEL"`
	InspectAddr  string `json:"INSPECT_ADDR"`
	RunQuanta    int    `json:"RUN_QUANTA"`
}
