package engine

import "encoding/json"

// Command is the unit of on-disk encoding: a tagged JSON object, either a
// Set or a Remove. Commands are concatenated in a segment with no
// delimiter between them; json.Decoder recovers each record's byte span
// by streaming rather than by scanning for a separator.
type Command struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

func setCommand(key, value string) Command {
	return Command{Op: "set", Key: key, Value: value}
}

func removeCommand(key string) Command {
	return Command{Op: "remove", Key: key}
}

func decodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// CommandPos is a pointer to a command's position in the log: the
// segment's generation, the byte offset of the command's first byte, and
// its length in bytes. It is a plain value type, cheap to copy and safe
// to read out of the index without holding a lock past the copy.
type CommandPos struct {
	Gen uint64
	Pos int64
	Len uint64
}
