package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ScriptMaster-server/models"
)

// Envelope 命令的 JSON 形式：{"op": "...", "args": {...}}
type Envelope struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

var registry = map[string]func() Command{}

func register(factories ...func() Command) {
	for _, f := range factories {
		registry[f().Op()] = f
	}
}

func init() {
	register(
		func() Command { return &SetProjectTitle{} },
		func() Command { return &CreateTemplate{} },
		func() Command { return &RenameTemplate{} },
		func() Command { return &SetTemplateThumbnail{} },
		func() Command { return &SetTemplatePresets{} },
		func() Command { return &DeleteTemplate{} },
		func() Command { return &CreateCoursePreset{} },
		func() Command { return &RenameCoursePreset{} },
		func() Command { return &DeleteCoursePreset{} },
		func() Command { return &AddStep{} },
		func() Command { return &UpdateStep{} },
		func() Command { return &RemoveStep{} },
		func() Command { return &MoveStep{} },
		func() Command { return &AddSegment{} },
		func() Command { return &UpdateSegment{} },
		func() Command { return &RemoveSegment{} },
		func() Command { return &MoveSegment{} },
		func() Command { return &SetDescriptions{} },
		func() Command { return &ApplyTemplate{} },
		func() Command { return &SyncSegment{} },
		func() Command { return &LoadCoursePreset{} },
		func() Command { return &AddAsset{} },
		func() Command { return &UpdateAsset{} },
		func() Command { return &SetAssetSelectedTypes{} },
		func() Command { return &SetAssetFormats{} },
		func() Command { return &SetCustomField{} },
		func() Command { return &DeleteCustomField{} },
		func() Command { return &SetAssetNote{} },
		func() Command { return &CopyPreviousAsset{} },
		func() Command { return &RemoveAsset{} },
		func() Command { return &MoveAsset{} },
		func() Command { return &AddExtra{} },
		func() Command { return &UpdateExtra{} },
		func() Command { return &SetExtraSelectedTypes{} },
		func() Command { return &SetExtraFormats{} },
		func() Command { return &SetExtraCustomField{} },
		func() Command { return &RemoveExtra{} },
		func() Command { return &MoveExtra{} },
		func() Command { return &AddColumn{} },
		func() Command { return &RenameColumn{} },
		func() Command { return &DeleteColumn{} },
		func() Command { return &MoveColumn{} },
	)
}

// Ops 所有已注册的命令名
func Ops() []string {
	ops := make([]string, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	return ops
}

// Decode 把信封解码为命令；未知 op 返回 UNKNOWN_COMMAND
func Decode(env Envelope) (Command, error) {
	factory, ok := registry[env.Op]
	if !ok {
		return nil, models.Errorf(models.KindUnknownCommand, "unknown op %q", env.Op)
	}
	cmd := factory()
	args := bytes.TrimSpace(env.Args)
	if len(args) > 0 && !bytes.Equal(args, []byte("null")) {
		if err := json.Unmarshal(args, cmd); err != nil {
			return nil, fmt.Errorf("decode args of %s: %w", env.Op, err)
		}
	}
	return cmd, nil
}

// DecodeAll 任一信封无法解码则整体失败
func DecodeAll(envs []Envelope) ([]Command, error) {
	cmds := make([]Command, 0, len(envs))
	for i, env := range envs {
		cmd, err := Decode(env)
		if err != nil {
			return nil, fmt.Errorf("command #%d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Encode 命令转为信封
func Encode(cmd Command) (Envelope, error) {
	args, err := json.Marshal(cmd)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", cmd.Op(), err)
	}
	return Envelope{Op: cmd.Op(), Args: args}, nil
}
