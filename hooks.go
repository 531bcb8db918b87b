package chip8

type Hook func(cpu *Cpu)

// AddBeforeStepHook adds a hook that runs before every step of the CPU
func (r *Runner) AddBeforeStepHook(h Hook) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.beforeStepHooks = append(r.beforeStepHooks, h)

	return len(r.beforeStepHooks)
}

// AddAfterStepHook adds a hook that runs after every successful step of the CPU
func (r *Runner) AddAfterStepHook(h Hook) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.afterStepHooks = append(r.afterStepHooks, h)

	return len(r.afterStepHooks)
}

// AddErrorHook adds a hook that runs when a step fails
func (r *Runner) AddErrorHook(h Hook) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errorHooks = append(r.errorHooks, h)

	return len(r.errorHooks)
}

func (r *Runner) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(r.cpu)
	}
}
