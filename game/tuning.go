package game

import "fmt"

// Tuning 可热更新的物理参数（数值本身不是不变量，只有定性性质需要保持）
type Tuning struct {
	MinSpeed      float64 `json:"minSpeed"`
	MaxSpeed      float64 `json:"maxSpeed"`
	MinBounce     float64 `json:"minBounce"`     // 反弹后反射轴分量的最小绝对值
	SpeedUp       float64 `json:"speedUp"`       // 每次击中球拍的加速倍数
	English       float64 `json:"english"`       // 击球点偏离球拍中心时附加的切向分量比例
	MaxPaddleStep float64 `json:"maxPaddleStep"` // 每个 Tick 球拍最多移动的距离
	MinLaunchAxis float64 `json:"minLaunchAxis"` // 发球方向在每个轴上的最小分量（单位向量）
}

// DefaultTuning 60Hz 下的默认参数
func DefaultTuning() Tuning {
	return Tuning{
		MinSpeed:      4,
		MaxSpeed:      10,
		MinBounce:     1.5,
		SpeedUp:       1.05,
		English:       0.5,
		MaxPaddleStep: 10,
		MinLaunchAxis: 0.25,
	}
}

// Validate 检查参数组合是否自洽
func (t Tuning) Validate() error {
	switch {
	case t.MinSpeed <= 0:
		return fmt.Errorf("%w: minSpeed must be > 0", ErrInvalidTuning)
	case t.MaxSpeed < t.MinSpeed:
		return fmt.Errorf("%w: maxSpeed %.2f < minSpeed %.2f", ErrInvalidTuning, t.MaxSpeed, t.MinSpeed)
	case t.MinBounce < 0 || t.MinBounce >= t.MinSpeed:
		return fmt.Errorf("%w: minBounce must be in [0, minSpeed)", ErrInvalidTuning)
	case t.SpeedUp < 1:
		return fmt.Errorf("%w: speedUp must be >= 1", ErrInvalidTuning)
	case t.English < 0 || t.English > 1:
		return fmt.Errorf("%w: english must be in [0, 1]", ErrInvalidTuning)
	case t.MaxPaddleStep <= 0:
		return fmt.Errorf("%w: maxPaddleStep must be > 0", ErrInvalidTuning)
	case t.MinLaunchAxis < 0 || t.MinLaunchAxis > 0.7:
		return fmt.Errorf("%w: minLaunchAxis must be in [0, 0.7]", ErrInvalidTuning)
	}
	return nil
}

// TuningPatch 管理接口的部分更新，nil 字段保持不变
type TuningPatch struct {
	MinSpeed      *float64 `json:"minSpeed,omitempty"`
	MaxSpeed      *float64 `json:"maxSpeed,omitempty"`
	MinBounce     *float64 `json:"minBounce,omitempty"`
	SpeedUp       *float64 `json:"speedUp,omitempty"`
	English       *float64 `json:"english,omitempty"`
	MaxPaddleStep *float64 `json:"maxPaddleStep,omitempty"`
	MinLaunchAxis *float64 `json:"minLaunchAxis,omitempty"`
}

// Apply 返回打过补丁的新参数并校验
func (t Tuning) Apply(p TuningPatch) (Tuning, error) {
	if p.MinSpeed != nil {
		t.MinSpeed = *p.MinSpeed
	}
	if p.MaxSpeed != nil {
		t.MaxSpeed = *p.MaxSpeed
	}
	if p.MinBounce != nil {
		t.MinBounce = *p.MinBounce
	}
	if p.SpeedUp != nil {
		t.SpeedUp = *p.SpeedUp
	}
	if p.English != nil {
		t.English = *p.English
	}
	if p.MaxPaddleStep != nil {
		t.MaxPaddleStep = *p.MaxPaddleStep
	}
	if p.MinLaunchAxis != nil {
		t.MinLaunchAxis = *p.MinLaunchAxis
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}
