package repocfg

// builtinConfigs is the compile-time table of the twelve SWE-bench Verified
// repositories. Test runners are the projects' official invocations.
var builtinConfigs = map[string]Config{
	"django/django": {
		Repo:        "django/django",
		ProjectType: ProjectDjango,
		TestRunner:  "./tests/runtests.py",
		Examples: []string{
			"./tests/runtests.py urlpatterns_reverse",
			"./tests/runtests.py auth_tests.test_views -v 2",
			"python tests/runtests.py model_fields --parallel 1",
		},
		TestPatterns:      []string{"tests/*/tests.py", "tests/*/test_*.py"},
		MinReadCalls:      6,
		MinTestCalls:      3,
		StrictExploration: true,
	},
	"astropy/astropy": {
		Repo:        "astropy/astropy",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest astropy/units/tests/test_quantity.py",
			"pytest astropy/io/fits -x",
		},
		TestPatterns: []string{"astropy/*/tests/test_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"scikit-learn/scikit-learn": {
		Repo:        "scikit-learn/scikit-learn",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest sklearn/linear_model/tests/test_ridge.py",
			"pytest sklearn/tests/test_pipeline.py -k test_pipeline_init",
		},
		TestPatterns: []string{"sklearn/*/tests/test_*.py", "sklearn/tests/test_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"matplotlib/matplotlib": {
		Repo:        "matplotlib/matplotlib",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest lib/matplotlib/tests/test_axes.py",
			"pytest lib/matplotlib/tests/test_figure.py::test_savefig",
		},
		TestPatterns: []string{"lib/matplotlib/tests/test_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"sympy/sympy": {
		Repo:        "sympy/sympy",
		ProjectType: ProjectCustom,
		TestRunner:  "bin/test",
		Examples: []string{
			"bin/test sympy/core/tests/test_basic.py",
			"python -m pytest sympy/solvers/tests/test_solveset.py",
		},
		TestPatterns: []string{"sympy/*/tests/test_*.py"},
		MinReadCalls: 6,
		MinTestCalls: 3,
	},
	"pytest-dev/pytest": {
		Repo:        "pytest-dev/pytest",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest testing/test_collection.py",
			"pytest testing/python/metafunc.py -x",
		},
		TestPatterns: []string{"testing/test_*.py", "testing/*/*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"psf/requests": {
		Repo:        "psf/requests",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest tests/test_requests.py",
			"pytest tests/test_utils.py -k test_super_len",
		},
		TestPatterns: []string{"tests/test_*.py"},
		MinReadCalls: 4,
		MinTestCalls: 2,
	},
	"pylint-dev/pylint": {
		Repo:        "pylint-dev/pylint",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest tests/test_self.py",
			"pytest tests/checkers/unittest_basic.py",
		},
		TestPatterns: []string{"tests/test_*.py", "tests/checkers/unittest_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"sphinx-doc/sphinx": {
		Repo:        "sphinx-doc/sphinx",
		ProjectType: ProjectTox,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest tests/test_build_html.py",
			"tox -e py39 -- tests/test_domain_py.py",
		},
		TestPatterns: []string{"tests/test_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
	"pallets/flask": {
		Repo:        "pallets/flask",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest tests/test_basic.py",
			"pytest tests/test_blueprints.py -x",
		},
		TestPatterns: []string{"tests/test_*.py"},
		MinReadCalls: 4,
		MinTestCalls: 2,
	},
	"mwaskom/seaborn": {
		Repo:        "mwaskom/seaborn",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest tests/test_relational.py",
			"pytest tests/_core/test_plot.py",
		},
		TestPatterns: []string{"tests/test_*.py", "tests/_core/test_*.py"},
		MinReadCalls: 4,
		MinTestCalls: 2,
	},
	"pydata/xarray": {
		Repo:        "pydata/xarray",
		ProjectType: ProjectPytest,
		TestRunner:  "pytest",
		Examples: []string{
			"pytest xarray/tests/test_dataset.py",
			"pytest xarray/tests/test_dataarray.py -k test_concat",
		},
		TestPatterns: []string{"xarray/tests/test_*.py"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	},
}
