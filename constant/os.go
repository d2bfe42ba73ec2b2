package constant

// Linux is the runtime.GOOS value with native media and audio adapters.
const Linux = "linux"
