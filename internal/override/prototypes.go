package override

// required marks a parameter present for every token count.
const required = 0xFF

// opt builds a presence mask from the token counts that supply a parameter.
// A parameter declared opt(3, 4) is filled only when the tag carries three
// or four tokens.
func opt(counts ...int) uint {
	var mask uint
	for _, n := range counts {
		mask |= 1 << (n - 1)
	}
	return mask
}

type paramSpec struct {
	typ   DataType
	class Class
	mask  uint
}

type prototype struct {
	name   string
	params []paramSpec
}

func spec(typ DataType, class Class) paramSpec {
	return paramSpec{typ: typ, class: class, mask: required}
}

func optSpec(typ DataType, class Class, mask uint) paramSpec {
	return paramSpec{typ: typ, class: class, mask: mask}
}

func proto(name string, params ...paramSpec) prototype {
	return prototype{name: name, params: params}
}

// prototypes is matched by prefix in order, so a name must appear before any
// shorter name it starts with (\fsp and \fscx before \fs, \fade before \fad).
// \clip and \iclip each appear twice: the rectangle form followed by the
// drawing form.
var prototypes = []prototype{
	proto(`\alpha`, spec(TypeText, ClassAlpha)),
	proto(`\bord`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\xbord`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\ybord`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\shad`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\xshad`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\yshad`, spec(TypeFloat, ClassAbsoluteSize)),

	// \fade(a1,a2,a3[,t1,t2,t3,t4])
	proto(`\fade`,
		spec(TypeInt, ClassNormal),
		spec(TypeInt, ClassNormal),
		spec(TypeInt, ClassNormal),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(7)),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(7)),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(7)),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(7)),
	),

	// \move(x1,y1,x2,y2[,t1,t2])
	proto(`\move`,
		spec(TypeFloat, ClassAbsolutePosX),
		spec(TypeFloat, ClassAbsolutePosY),
		spec(TypeFloat, ClassAbsolutePosX),
		spec(TypeFloat, ClassAbsolutePosY),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(6)),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(6)),
	),

	proto(`\clip`,
		spec(TypeInt, ClassAbsolutePosX),
		spec(TypeInt, ClassAbsolutePosY),
		spec(TypeInt, ClassAbsolutePosX),
		spec(TypeInt, ClassAbsolutePosY),
	),
	// \clip([scale,]drawing)
	proto(`\clip`,
		optSpec(TypeInt, ClassNormal, opt(2)),
		spec(TypeText, ClassDrawing),
	),
	proto(`\iclip`,
		spec(TypeInt, ClassAbsolutePosX),
		spec(TypeInt, ClassAbsolutePosY),
		spec(TypeInt, ClassAbsolutePosX),
		spec(TypeInt, ClassAbsolutePosY),
	),
	proto(`\iclip`,
		optSpec(TypeInt, ClassNormal, opt(2)),
		spec(TypeText, ClassDrawing),
	),

	proto(`\fscx`, spec(TypeFloat, ClassRelativeSizeX)),
	proto(`\fscy`, spec(TypeFloat, ClassRelativeSizeY)),
	proto(`\pos`, spec(TypeFloat, ClassAbsolutePosX), spec(TypeFloat, ClassAbsolutePosY)),
	proto(`\org`, spec(TypeFloat, ClassAbsolutePosX), spec(TypeFloat, ClassAbsolutePosY)),
	proto(`\pbo`, spec(TypeInt, ClassAbsolutePosY)),
	proto(`\fad`, spec(TypeInt, ClassRelativeTimeStart), spec(TypeInt, ClassRelativeTimeEnd)),
	proto(`\fsp`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\frx`, spec(TypeFloat, ClassNormal)),
	proto(`\fry`, spec(TypeFloat, ClassNormal)),
	proto(`\frz`, spec(TypeFloat, ClassNormal)),
	proto(`\fr`, spec(TypeFloat, ClassNormal)),
	proto(`\fax`, spec(TypeFloat, ClassNormal)),
	proto(`\fay`, spec(TypeFloat, ClassNormal)),
	proto(`\1c`, spec(TypeText, ClassColor)),
	proto(`\2c`, spec(TypeText, ClassColor)),
	proto(`\3c`, spec(TypeText, ClassColor)),
	proto(`\4c`, spec(TypeText, ClassColor)),
	proto(`\1a`, spec(TypeText, ClassAlpha)),
	proto(`\2a`, spec(TypeText, ClassAlpha)),
	proto(`\3a`, spec(TypeText, ClassAlpha)),
	proto(`\4a`, spec(TypeText, ClassAlpha)),
	proto(`\fe`, spec(TypeText, ClassNormal)),
	proto(`\ko`, spec(TypeInt, ClassKaraoke)),
	proto(`\kf`, spec(TypeInt, ClassKaraoke)),
	proto(`\be`, spec(TypeInt, ClassNormal)),
	proto(`\blur`, spec(TypeFloat, ClassNormal)),
	proto(`\fn`, spec(TypeText, ClassNormal)),
	proto(`\fs+`, spec(TypeFloat, ClassRelativeSizeX)),
	proto(`\fs-`, spec(TypeFloat, ClassRelativeSizeX)),
	proto(`\fs`, spec(TypeFloat, ClassAbsoluteSize)),
	proto(`\an`, spec(TypeInt, ClassNormal)),
	proto(`\c`, spec(TypeText, ClassColor)),
	proto(`\b`, spec(TypeInt, ClassNormal)),
	proto(`\i`, spec(TypeBool, ClassNormal)),
	proto(`\u`, spec(TypeBool, ClassNormal)),
	proto(`\s`, spec(TypeBool, ClassNormal)),
	proto(`\a`, spec(TypeInt, ClassNormal)),
	proto(`\k`, spec(TypeInt, ClassKaraoke)),
	proto(`\K`, spec(TypeInt, ClassKaraoke)),
	proto(`\q`, spec(TypeInt, ClassNormal)),
	proto(`\p`, spec(TypeInt, ClassNormal)),
	proto(`\r`, spec(TypeText, ClassNormal)),

	// \t([t1,t2,][accel,]modifiers)
	proto(`\t`,
		optSpec(TypeInt, ClassRelativeTimeStart, opt(3, 4)),
		optSpec(TypeInt, ClassRelativeTimeStart, opt(3, 4)),
		optSpec(TypeFloat, ClassNormal, opt(2, 4)),
		spec(TypeBlock, ClassNormal),
	),
}

// Names lists the recognised tag names in match order, without duplicates.
func Names() []string {
	seen := make(map[string]bool, len(prototypes))
	names := make([]string, 0, len(prototypes))
	for _, pr := range prototypes {
		if seen[pr.name] {
			continue
		}
		seen[pr.name] = true
		names = append(names, pr.name)
	}
	return names
}
