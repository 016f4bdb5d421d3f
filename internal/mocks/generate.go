package mocks

//go:generate mockery --name ClusterRegistry --srcpkg github.com/aevon-lab/servicestate/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name ComponentStore --srcpkg github.com/aevon-lab/servicestate/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Publisher --srcpkg github.com/aevon-lab/servicestate/internal/publish --output ./publish --outpkg publishmocks --with-expecter
//go:generate mockery --name StateStrategy --srcpkg github.com/aevon-lab/servicestate/internal/core/resolver --output ./resolver --outpkg resolvermocks --with-expecter
