package sl

import "log/slog"

// Module tags log records with the emitting component.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Secret logs a value keeping only a short prefix visible.
func Secret(key, value string) slog.Attr {
	masked := value
	if len(masked) > 4 {
		masked = masked[:4] + "..."
	}
	return slog.String(key, masked)
}
