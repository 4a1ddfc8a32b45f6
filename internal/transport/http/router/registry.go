package router

import (
	"sort"

	"tienda-api/internal/transport/http/ez"
)

// APIModule 资源模块在根分组上挂载自己的路由
type APIModule interface{ MountAPI(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 收集模块，构建引擎时一次性挂载；由 main 持有，不使用包级状态
type Registry struct {
	mods []APIModule
}

func NewRegistry(mods ...APIModule) *Registry {
	r := &Registry{}
	r.Register(mods...)
	return r
}

func (r *Registry) Register(mods ...APIModule) {
	for _, m := range mods {
		if m != nil {
			r.mods = append(r.mods, m)
		}
	}
}

// MountAll 按优先级挂载全部模块
func (r *Registry) MountAll(e ez.EZ) {
	mods := append([]APIModule(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
