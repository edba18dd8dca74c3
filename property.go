package backdrop

import "fmt"

// Animatable property paths accepted by Timeline.Schedule.
const (
	PropPositionX = "position.x"
	PropPositionY = "position.y"
	PropPositionZ = "position.z"
	PropRotationX = "rotation.x"
	PropRotationY = "rotation.y"
	PropRotationZ = "rotation.z"
	PropScaleX    = "scale.x"
	PropScaleY    = "scale.y"
	PropScaleZ    = "scale.z"
	PropOpacity   = "opacity"

	// Material paths write through to the object's (possibly shared) material.
	PropMaterialOpacity  = "material.opacity"
	PropMaterialEmissive = "material.emissiveIntensity"
	PropMaterialPoint    = "material.pointSize"
)

// resolveProperty returns a pointer to the float32 field named by path.
func resolveProperty(o *Object, path string) (*float32, error) {
	switch path {
	case PropPositionX:
		return &o.Position[0], nil
	case PropPositionY:
		return &o.Position[1], nil
	case PropPositionZ:
		return &o.Position[2], nil
	case PropRotationX:
		return &o.Rotation[0], nil
	case PropRotationY:
		return &o.Rotation[1], nil
	case PropRotationZ:
		return &o.Rotation[2], nil
	case PropScaleX:
		return &o.Scale[0], nil
	case PropScaleY:
		return &o.Scale[1], nil
	case PropScaleZ:
		return &o.Scale[2], nil
	case PropOpacity:
		return &o.Opacity, nil
	}
	if o.material != nil {
		switch path {
		case PropMaterialOpacity:
			return &o.material.Opacity, nil
		case PropMaterialEmissive:
			return &o.material.EmissiveIntensity, nil
		case PropMaterialPoint:
			return &o.material.PointSize, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %s %q", ErrUnknownProperty, path, o.Type, o.Name)
}
